package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mindsync/server/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, err := tm.Issue("u-1", domain.RoleClinician)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("expected subject u-1, got %s", claims.Subject)
	}
	if claims.Role != "clinician" {
		t.Fatalf("expected role clinician, got %s", claims.Role)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("different", time.Hour)

	token, err := tm.Issue("u-1", domain.RolePatient)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	tm := &TokenManager{secret: "secret", issuer: "mindsync", ttl: -time.Minute}

	token, err := tm.Issue("u-1", domain.RolePatient)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := tm.Verify(token); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	if _, err := tm.Issue("", domain.RolePatient); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestTokenFromRequestCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})

	token, err := TokenFromRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "cookie-token" {
		t.Fatalf("expected cookie token, got %s", token)
	}
}

func TestTokenFromRequestBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")

	token, err := TokenFromRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "header-token" {
		t.Fatalf("expected header token, got %s", token)
	}
}

func TestTokenFromRequestMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := TokenFromRequest(r); err == nil {
		t.Fatalf("expected error for missing token")
	}

	r.Header.Set("Authorization", "Basic abc")
	if _, err := TokenFromRequest(r); err == nil {
		t.Fatalf("expected error for non-bearer header")
	}
}

func TestSetAndClearAuthCookie(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	w := httptest.NewRecorder()
	tm.SetAuthCookie(w, "tok", false)
	setCookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, CookieName+"=tok") || !strings.Contains(setCookie, "HttpOnly") {
		t.Fatalf("unexpected cookie header: %s", setCookie)
	}

	w2 := httptest.NewRecorder()
	ClearAuthCookie(w2)
	cleared := w2.Header().Get("Set-Cookie")
	if !strings.Contains(cleared, "Max-Age=0") && !strings.Contains(cleared, "Max-Age=-1") {
		t.Fatalf("expected cookie to be expired, got %s", cleared)
	}
}
