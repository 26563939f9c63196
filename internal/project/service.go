package project

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/drawing-management/internal/auth"
)

// Repository defines the data access methods for projects and assignments.
type Repository interface {
	Create(p *Project) error
	GetByID(id int64) (*Project, error)
	GetAll() ([]*Project, error)
	GetByUser(userID int64) ([]*Project, error)
	Update(id int64, updates map[string]interface{}) (*Project, error)
	Assign(projectID, userID int64) error
	Unassign(projectID, userID int64) error
	AssignedUsers(projectID int64) ([]*AssignedUser, error)
	IsAssigned(projectID, userID int64) (bool, error)
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
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
	}
}

// List returns every project for privileged roles, otherwise only the
// actor's assigned projects.
func (s *Service) List(ctx context.Context, actor *auth.User) ([]*Project, error) {
	if auth.CanPerform(actor.Role, auth.ActionViewAllProjects) {
		return s.repo.GetAll()
	}
	return s.repo.GetByUser(actor.ID)
}

func (s *Service) GetByID(id int64) (*Project, error) {
	return s.repo.GetByID(id)
}

// Create persists a project and bulk-assigns the requested users. Assignment
// failures abort creation reporting so duplicates surface early.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateProjectDTO) (*Project, error) {
	if !auth.CanPerform(actor.Role, auth.ActionManageProjects) {
		s.logger.Warn("create project denied", "actor_id", actor.ID, "role", actor.Role)
		return nil, ErrForbidden
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := &Project{
		Name:        dto.Name,
		Description: dto.Description,
		Priority:    dto.Priority,
		Status:      dto.Status,
		CreatedByID: actor.ID,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create project", "error", err, "name", dto.Name)
		return nil, err
	}

	for _, userID := range dto.AssignedUserIDs {
		if err := s.repo.Assign(p.ID, userID); err != nil {
			s.logger.Error("failed to assign user to project", "error", err, "project_id", p.ID, "user_id", userID)
			return nil, err
		}
	}

	if err := s.recorder.Record(ctx, actor.ID, "create_project", "project", &p.ID, map[string]any{
		"project_name":   p.Name,
		"assigned_users": len(dto.AssignedUserIDs),
	}); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "project_id", p.ID, "name", p.Name, "assigned", len(dto.AssignedUserIDs))
	return p, nil
}

// Update applies a partial project update (typically a status change).
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, dto UpdateProjectDTO) (*Project, error) {
	if !auth.CanPerform(actor.Role, auth.ActionManageProjects) {
		s.logger.Warn("update project denied", "actor_id", actor.ID, "role", actor.Role)
		return nil, ErrForbidden
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Priority != nil {
		updates["priority"] = *dto.Priority
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}

	p, err := s.repo.Update(id, updates)
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, actor.ID, "update_project", "project", &p.ID, map[string]any{
		"project_name": p.Name,
		"status":       p.Status,
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// Assignments returns the assigned users for a project, passwords excluded.
func (s *Service) Assignments(ctx context.Context, projectID int64) ([]*AssignedUser, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}
	return s.repo.AssignedUsers(projectID)
}

// Unassign removes a user from a project.
func (s *Service) Unassign(ctx context.Context, actor *auth.User, projectID, userID int64) error {
	if !auth.CanPerform(actor.Role, auth.ActionManageProjects) {
		return ErrForbidden
	}
	if err := s.repo.Unassign(projectID, userID); err != nil {
		return err
	}
	return s.recorder.Record(ctx, actor.ID, "unassign_user", "project", &projectID, map[string]any{
		"user_id": userID,
	})
}

// IsVisible reports whether the actor may see (and upload into) the project:
// privileged roles see everything, others only their assignments. Returns
// ErrNotFound when the project does not exist at all.
func (s *Service) IsVisible(ctx context.Context, actor *auth.User, projectID int64) (bool, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return false, err
	}
	if auth.CanPerform(actor.Role, auth.ActionViewAllProjects) {
		return true, nil
	}
	return s.repo.IsAssigned(projectID, actor.ID)
}
