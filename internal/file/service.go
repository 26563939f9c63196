package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/drawing-management/internal/auth"
	"github.com/frahmantamala/drawing-management/internal/blob"
	"github.com/frahmantamala/drawing-management/internal/core/events"
	"github.com/frahmantamala/drawing-management/internal/project"
)

// Repository defines the data access methods for file metadata.
type Repository interface {
	Create(f *File) error
	GetByID(id int64) (*File, error)
	GetByProject(projectID int64) ([]*File, error)
	OriginalNameExists(projectID int64, originalName string) (bool, error)
	MaxVersionForBase(projectID int64, baseName string) (int, error)
	UpdateReview(id int64, status Status, reviewerID int64, notes *string, reviewedAt time.Time) (*File, error)
}

// ProjectGate answers whether the actor may touch a project at all.
type ProjectGate interface {
	IsVisible(ctx context.Context, actor *auth.User, projectID int64) (bool, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action, entityType string, entityID *int64, details map[string]any) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	blobs    blob.Store
	projects ProjectGate
	recorder ActivityRecorder
	eventBus EventPublisher
	uploads  *keyedMutex
	logger   *slog.Logger
}

func NewService(repo Repository, blobs blob.Store, projects ProjectGate, recorder ActivityRecorder, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		blobs:    blobs,
		projects: projects,
		recorder: recorder,
		eventBus: eventBus,
		uploads:  newKeyedMutex(),
		logger:   logger,
	}
}

// Upload stores a batch of drawings in a project. Each file is validated and
// versioned independently; invalid files are reported in the result without
// aborting valid siblings. Returns ErrNoValidFiles when nothing was stored.
func (s *Service) Upload(ctx context.Context, actor *auth.User, projectID int64, parts []UploadPart) (*UploadResult, error) {
	if !auth.CanPerform(actor.Role, auth.ActionUploadFiles) {
		return nil, ErrReviewForbidden
	}

	visible, err := s.projects.IsVisible(ctx, actor, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if !visible {
		s.logger.Warn("upload to project denied", "actor_id", actor.ID, "project_id", projectID)
		return nil, ErrProjectNotVisible
	}

	result := &UploadResult{}
	for _, part := range parts {
		stored, err := s.storeOne(ctx, actor, projectID, part)
		if err != nil {
			var vErr *ValidationError
			switch {
			case errors.As(err, &vErr),
				errors.Is(err, ErrFileTooLarge),
				errors.Is(err, ErrBadExtension),
				errors.Is(err, ErrEmptyFileName):
				result.Rejected = append(result.Rejected, UploadRejection{
					FileName: part.Filename,
					Reason:   err.Error(),
				})
				continue
			default:
				return nil, err
			}
		}
		result.Uploaded = append(result.Uploaded, stored)
	}

	if len(result.Uploaded) == 0 {
		return result, ErrNoValidFiles
	}
	return result, nil
}

// storeOne runs the versioning sequence for a single file under the
// per-(project, base name) lock so concurrent same-name uploads serialize.
func (s *Service) storeOne(ctx context.Context, actor *auth.User, projectID int64, part UploadPart) (*File, error) {
	if err := ValidateUpload(part.Filename, part.Size); err != nil {
		return nil, err
	}

	base, _ := SplitName(part.Filename)
	unlock := s.uploads.Lock(fmt.Sprintf("%d|%s", projectID, base))
	defer unlock()

	exists, err := s.repo.OriginalNameExists(projectID, part.Filename)
	if err != nil {
		return nil, err
	}
	latest := 0
	if exists {
		latest, err = s.repo.MaxVersionForBase(projectID, base)
		if err != nil {
			return nil, err
		}
	}

	storedName, version := ResolveName(part.Filename, exists, latest)
	key := fmt.Sprintf("projects/%d/%s", projectID, storedName)

	if err := s.blobs.Save(ctx, key, part.Reader, part.Size, part.ContentType); err != nil {
		s.logger.Error("failed to store file content", "error", err, "key", key)
		return nil, err
	}

	f := &File{
		Name:         storedName,
		OriginalName: part.Filename,
		Path:         key,
		Size:         part.Size,
		MimeType:     part.ContentType,
		Version:      version,
		ProjectID:    projectID,
		UploadedByID: actor.ID,
		Status:       StatusPendente,
		UploadedAt:   time.Now(),
	}
	if err := s.repo.Create(f); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	if err := s.recorder.Record(ctx, actor.ID, "upload_file", "file", &f.ID, map[string]any{
		"file_name":  f.Name,
		"project_id": projectID,
		"version":    f.Version,
	}); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.NewFileUploadedEvent(f.ID, projectID, actor.ID, f.Name, f.Version)); err != nil {
		s.logger.Error("failed to publish upload event", "error", err, "file_id", f.ID)
	}

	s.logger.Info("file stored", "file_id", f.ID, "name", f.Name, "version", f.Version, "project_id", projectID)
	return f, nil
}

// SetStatus applies a review decision. The role check happens before any
// read so unauthorized callers learn nothing about the file.
func (s *Service) SetStatus(ctx context.Context, actor *auth.User, fileID int64, dto UpdateStatusDTO) (*File, error) {
	if !auth.CanPerform(actor.Role, auth.ActionReviewFiles) {
		s.logger.Warn("review denied", "actor_id", actor.ID, "role", actor.Role, "file_id", fileID)
		return nil, ErrReviewForbidden
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(fileID); err != nil {
		return nil, err
	}

	f, err := s.repo.UpdateReview(fileID, dto.Status, actor.ID, dto.ReviewNotes, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.recorder.Record(ctx, actor.ID, "review_file", "file", &f.ID, map[string]any{
		"file_name": f.Name,
		"status":    f.Status,
	}); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.NewFileReviewedEvent(f.ID, f.ProjectID, actor.ID, string(f.Status))); err != nil {
		s.logger.Error("failed to publish review event", "error", err, "file_id", f.ID)
	}

	return f, nil
}

// ListByProject returns a project's files for actors allowed to see it.
func (s *Service) ListByProject(ctx context.Context, actor *auth.User, projectID int64) ([]*File, error) {
	visible, err := s.projects.IsVisible(ctx, actor, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if !visible {
		return nil, ErrProjectNotVisible
	}
	return s.repo.GetByProject(projectID)
}

// Download streams a stored file's content after the project visibility check.
func (s *Service) Download(ctx context.Context, actor *auth.User, fileID int64) (*File, io.ReadCloser, error) {
	f, err := s.repo.GetByID(fileID)
	if err != nil {
		return nil, nil, err
	}

	visible, err := s.projects.IsVisible(ctx, actor, f.ProjectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, err
	}
	if !visible {
		return nil, nil, ErrProjectNotVisible
	}

	rc, err := s.blobs.Open(ctx, f.Path)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return f, rc, nil
}

// isUniqueViolation matches the (project_id, name) unique index backstop on
// both postgres and sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
