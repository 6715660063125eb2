package handler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mindsync/server/internal/domain"
)

type memUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	assign  *memAssignRepo
	seq     int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	if _, exists := m.byEmail[u.Email]; exists {
		return domain.Conflict("email already in use")
	}
	if u.ID == "" {
		m.seq++
		u.ID = fmt.Sprintf("u-%d", m.seq)
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	if u, ok := m.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (m *memUserRepo) Update(u *domain.User) error {
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) List() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) ListPatients() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.Role == domain.RolePatient {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) ListPatientsAssignedTo(clinicianID string) ([]*domain.User, error) {
	out := []*domain.User{}
	if m.assign == nil {
		return out, nil
	}
	for patientID := range m.assign.edges[clinicianID] {
		if u, ok := m.byID[patientID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) ListAssignablePatients() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.Role == domain.RolePatient && u.IsActive && !strings.Contains(u.Email, "admin") {
			out = append(out, u)
		}
	}
	return out, nil
}

type memAssignRepo struct {
	edges map[string]map[string]bool
}

func newMemAssignRepo() *memAssignRepo {
	return &memAssignRepo{edges: map[string]map[string]bool{}}
}

func (m *memAssignRepo) Add(clinicianID, patientID string) error {
	if m.edges[clinicianID] == nil {
		m.edges[clinicianID] = map[string]bool{}
	}
	m.edges[clinicianID][patientID] = true
	return nil
}

func (m *memAssignRepo) Remove(clinicianID, patientID string) error {
	delete(m.edges[clinicianID], patientID)
	return nil
}

func (m *memAssignRepo) Exists(clinicianID, patientID string) (bool, error) {
	return m.edges[clinicianID][patientID], nil
}

func (m *memAssignRepo) CliniciansFor(patientID string) ([]string, error) {
	out := []string{}
	for clinicianID, patients := range m.edges {
		if patients[patientID] {
			out = append(out, clinicianID)
		}
	}
	return out, nil
}

type memMoodRepo struct {
	entries []*domain.MoodEntry
	seq     int
}

func newMemMoodRepo() *memMoodRepo {
	return &memMoodRepo{}
}

func (m *memMoodRepo) Create(e *domain.MoodEntry) error {
	m.seq++
	e.ID = fmt.Sprintf("m-%d", m.seq)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.entries = append(m.entries, e)
	return nil
}

func (m *memMoodRepo) ListSince(userID string, from time.Time) ([]*domain.MoodEntry, error) {
	out := []*domain.MoodEntry{}
	for _, e := range m.entries {
		if e.UserID == userID && !e.EntryDate.Before(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memMoodRepo) ListRange(userID string, start, end *time.Time) ([]*domain.MoodEntry, error) {
	out := []*domain.MoodEntry{}
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		if start != nil && e.EntryDate.Before(*start) {
			continue
		}
		if end != nil && e.EntryDate.After(*end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.After(out[j].EntryDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memMoodRepo) AverageByDay(userID string, from time.Time) (map[string]float64, error) {
	sums := map[string]int{}
	counts := map[string]int{}
	for _, e := range m.entries {
		if e.UserID != userID || e.EntryDate.Before(from) {
			continue
		}
		key := e.EntryDate.Format("2006-01-02")
		sums[key] += e.Rating
		counts[key]++
	}
	out := map[string]float64{}
	for key, sum := range sums {
		out[key] = float64(sum) / float64(counts[key])
	}
	return out, nil
}

type memNoteRepo struct {
	notes []*domain.ClinicianNote
	seq   int
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{}
}

func (m *memNoteRepo) Create(n *domain.ClinicianNote) error {
	m.seq++
	n.ID = fmt.Sprintf("n-%d", m.seq)
	n.CreatedAt = time.Now()
	m.notes = append(m.notes, n)
	return nil
}

func (m *memNoteRepo) ListByPatient(patientID string) ([]*domain.ClinicianNote, error) {
	out := []*domain.ClinicianNote{}
	for _, n := range m.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, nil
}

type memFlagRepo struct {
	flags map[string]*domain.FeatureFlag
}

func newMemFlagRepo() *memFlagRepo {
	return &memFlagRepo{flags: map[string]*domain.FeatureFlag{}}
}

func (m *memFlagRepo) List() ([]*domain.FeatureFlag, error) {
	keys := make([]string, 0, len(m.flags))
	for k := range m.flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*domain.FeatureFlag, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.flags[k])
	}
	return out, nil
}

func (m *memFlagRepo) Get(key string) (*domain.FeatureFlag, error) {
	if f, ok := m.flags[key]; ok {
		return f, nil
	}
	return nil, domain.NotFound("flag not found")
}

func (m *memFlagRepo) SetEnabled(key string, enabled bool) (*domain.FeatureFlag, error) {
	f, ok := m.flags[key]
	if !ok {
		return nil, domain.NotFound("flag not found")
	}
	f.Enabled = enabled
	f.UpdatedAt = time.Now()
	return f, nil
}

func (m *memFlagRepo) SeedDefaults(flags []domain.FeatureFlag) error {
	for i := range flags {
		if _, exists := m.flags[flags[i].Key]; !exists {
			f := flags[i]
			m.flags[f.Key] = &f
		}
	}
	return nil
}

type memAuditRepo struct {
	entries []*domain.AuditLogEntry
	seq     int
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (m *memAuditRepo) Create(e *domain.AuditLogEntry) error {
	m.seq++
	e.ID = fmt.Sprintf("a-%d", m.seq)
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAuditRepo) ListRecent(limit int) ([]*domain.AuditLogEntry, error) {
	out := make([]*domain.AuditLogEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memAuditRepo) ListByTarget(userID string) ([]*domain.AuditLogEntry, error) {
	out := []*domain.AuditLogEntry{}
	for _, e := range m.entries {
		if e.TargetUserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAuditRepo) ListByAdmin(userID string) ([]*domain.AuditLogEntry, error) {
	out := []*domain.AuditLogEntry{}
	for _, e := range m.entries {
		if e.AdminID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}
