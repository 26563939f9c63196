package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/drawing-management/internal/auth"
)

// Repository defines the data access methods for users.
type Repository interface {
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetAll() ([]*User, error)
	Create(u *User) error
	Update(id int64, updates map[string]interface{}) (*User, error)
}

// PasswordHasher hashes plaintext passwords before they reach storage.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// EmailDomainSource supplies the corporate domain allow-list.
type EmailDomainSource interface {
	AllowedEmailDomains(ctx context.Context) []string
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action, entityType string, entityID *int64, details map[string]any) error
}

type Service struct {
	repo     Repository
	hasher   PasswordHasher
	domains  EmailDomainSource
	recorder ActivityRecorder
	logger   *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, domains EmailDomainSource, recorder ActivityRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		domains:  domains,
		recorder: recorder,
		logger:   logger,
	}
}

// List returns active users; only user managers may call it.
func (s *Service) List(ctx context.Context, actor *auth.User) ([]*User, error) {
	if !auth.CanPerform(actor.Role, auth.ActionManageUsers) {
		s.logger.Warn("list users denied", "actor_id", actor.ID, "role", actor.Role)
		return nil, ErrForbidden
	}
	return s.repo.GetAll()
}

func (s *Service) GetByID(id int64) (*User, error) {
	return s.repo.GetByID(id)
}

// Create validates, hashes the password and persists a new user. The policy
// check runs before any storage access.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateUserDTO) (*User, error) {
	if !auth.CanPerform(actor.Role, auth.ActionManageUsers) {
		s.logger.Warn("create user denied", "actor_id", actor.ID, "role", actor.Role)
		return nil, ErrForbidden
	}

	if err := dto.Validate(s.domains.AllowedEmailDomains(ctx)); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	active := true
	if dto.IsActive != nil {
		active = *dto.IsActive
	}

	u := &User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         dto.Role,
		IsActive:     active,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	if err := s.recorder.Record(ctx, actor.ID, "create_user", "user", &u.ID, map[string]any{
		"created_user_email": u.Email,
		"created_user_role":  u.Role,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "email", u.Email, "role", u.Role)
	return u, nil
}

// Update applies a partial update. An absent password field leaves the stored
// hash untouched. Users are never hard-deleted; deactivation flips is_active.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, dto UpdateUserDTO) (*User, error) {
	if !auth.CanPerform(actor.Role, auth.ActionManageUsers) {
		s.logger.Warn("update user denied", "actor_id", actor.ID, "role", actor.Role)
		return nil, ErrForbidden
	}

	if err := dto.Validate(s.domains.AllowedEmailDomains(ctx)); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	updatedFields := []string{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
		updatedFields = append(updatedFields, "name")
	}
	if dto.Email != nil {
		updates["email"] = *dto.Email
		updatedFields = append(updatedFields, "email")
	}
	if dto.Role != nil {
		updates["role"] = *dto.Role
		updatedFields = append(updatedFields, "role")
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
		updatedFields = append(updatedFields, "is_active")
	}
	if dto.Password != nil && *dto.Password != "" {
		hash, err := s.hasher.HashPassword(*dto.Password)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return nil, err
		}
		updates["password_hash"] = hash
		updatedFields = append(updatedFields, "password")
	}

	u, err := s.repo.Update(id, updates)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, actor.ID, "update_user", "user", &u.ID, map[string]any{
		"updated_fields": updatedFields,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", u.ID, "fields", updatedFields)
	return u, nil
}
