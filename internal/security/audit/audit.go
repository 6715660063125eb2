package audit

import (
	"log/slog"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/observability/metrics"
)

// Recorder persists audit log entries and mirrors them to the structured
// log. Writes are best-effort: the admin action they describe has already
// been applied and is the authoritative effect, so a failed audit write is
// logged and swallowed rather than rolled back.
type Recorder struct {
	repo   domain.AuditLogRepository
	logger *slog.Logger
}

func NewRecorder(repo domain.AuditLogRepository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record writes an audit entry for an admin action against a target user
func (r *Recorder) Record(action, adminID, targetUserID string) {
	entry := &domain.AuditLogEntry{
		Action:       action,
		AdminID:      adminID,
		TargetUserID: targetUserID,
	}

	if err := r.repo.Create(entry); err != nil {
		metrics.ObserveAuditWrite("error")
		r.logger.Error("audit write failed",
			slog.String("action", action),
			slog.String("admin_id", adminID),
			slog.String("target_user_id", targetUserID),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.ObserveAuditWrite("ok")
	r.logger.Info("audit",
		slog.String("action", action),
		slog.String("admin_id", adminID),
		slog.String("target_user_id", targetUserID),
	)
}
