package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/frahmantamala/drawing-management/internal/auth"
)

// Repository defines the data access methods for system settings.
type Repository interface {
	Get(key string) (*SystemSetting, error)
	GetAll() ([]*SystemSetting, error)
	Upsert(key, value string) (*SystemSetting, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action, entityType string, entityID *int64, details map[string]any) error
}

type Service struct {
	repo     Repository
	recorder ActivityRecorder
	logger   *slog.Logger
}

func NewService(repo Repository, recorder ActivityRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// AllowedEmailDomains returns the registration allow-list. A missing or
// malformed setting yields an empty list, which disables the allow-list check
// and leaves only the personal-domain block in place.
func (s *Service) AllowedEmailDomains(ctx context.Context) []string {
	setting, err := s.repo.Get(KeyAllowedEmailDomains)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to load email domain allow-list", "error", err)
		}
		return nil
	}

	var domains []string
	if err := json.Unmarshal([]byte(setting.Value), &domains); err != nil {
		s.logger.Error("malformed email domain allow-list", "error", err, "value", setting.Value)
		return nil
	}
	return domains
}

// List returns every setting; management grant required.
func (s *Service) List(ctx context.Context, actor *auth.User) ([]*SystemSetting, error) {
	if !auth.CanPerform(actor.Role, auth.ActionManageUsers) {
		return nil, ErrForbidden
	}
	return s.repo.GetAll()
}

// Set creates or replaces a setting value. The value must be valid JSON.
func (s *Service) Set(ctx context.Context, actor *auth.User, key, value string) (*SystemSetting, error) {
	if !auth.CanPerform(actor.Role, auth.ActionManageUsers) {
		s.logger.Warn("settings update denied", "actor_id", actor.ID, "role", actor.Role)
		return nil, ErrForbidden
	}

	if !json.Valid([]byte(value)) {
		return nil, errors.New("setting value must be valid JSON")
	}

	setting, err := s.repo.Upsert(key, value)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, actor.ID, "update_setting", "setting", &setting.ID, map[string]any{
		"key": key,
	}); err != nil {
		return nil, err
	}

	return setting, nil
}
