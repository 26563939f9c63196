package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/frahmantamala/drawing-management/internal/auth"
)

// Repository defines the data access methods for the audit trail and
// dashboard aggregates. A nil userID in a Counts call means global scope;
// otherwise counts cover only that user's assigned projects.
type Repository interface {
	Create(entry *ActivityLog) error
	Recent(limit int) ([]*ActivityLog, error)
	RecentForUser(userID int64, limit int) ([]*ActivityLog, error)
	Counts(userID *int64) (*DashboardStats, error)
}

const defaultActivityLimit = 20

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an audit entry. It runs synchronously inside the triggering
// operation: a failed write fails that operation too, so the trail never has
// gaps.
func (s *Service) Record(ctx context.Context, userID int64, action, entityType string, entityID *int64, details map[string]any) error {
	var raw json.RawMessage
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = b
	}

	entry := &ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to record activity", "error", err, "action", action, "user_id", userID)
		return err
	}
	return nil
}

// Recent lists the latest audit entries. Actors without the view-all grant
// only see their own activity.
func (s *Service) Recent(ctx context.Context, actor *auth.User, limit int) ([]*ActivityLog, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if auth.CanPerform(actor.Role, auth.ActionViewAllActivity) {
		return s.repo.Recent(limit)
	}
	return s.repo.RecentForUser(actor.ID, limit)
}

// Stats computes the dashboard aggregates, scoped to the actor's visible
// projects unless their role sees everything.
func (s *Service) Stats(ctx context.Context, actor *auth.User) (*DashboardStats, error) {
	var scope *int64
	if !auth.CanPerform(actor.Role, auth.ActionViewAllProjects) {
		scope = &actor.ID
	}

	stats, err := s.repo.Counts(scope)
	if err != nil {
		return nil, err
	}

	if stats.TotalFiles > 0 {
		stats.ApprovalRate = int(math.Round(float64(stats.ApprovedFiles) / float64(stats.TotalFiles) * 100))
	}
	return stats, nil
}
