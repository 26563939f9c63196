package file

import (
	"errors"
	"time"
)

// Status is the review state of an uploaded drawing. Every file starts as
// pendente; reviewers move it between aprovado, rejeitado and revisao with no
// further transition restrictions (a file sent to revisao can be re-reviewed).
type Status string

const (
	StatusPendente  Status = "pendente"
	StatusAprovado  Status = "aprovado"
	StatusRejeitado Status = "rejeitado"
	StatusRevisao   Status = "revisao"
)

// ValidReviewTarget reports whether s is a status a reviewer may set.
// pendente is only ever assigned at upload.
func ValidReviewTarget(s Status) bool {
	switch s {
	case StatusAprovado, StatusRejeitado, StatusRevisao:
		return true
	}
	return false
}

// File is one stored drawing revision. Name is the stored (possibly
// version-suffixed) name; OriginalName is what the client sent. Version
// numbers per (project, base name) are strictly increasing from 1.
type File struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	OriginalName string     `json:"original_name" gorm:"column:original_name;not null"`
	Path         string     `json:"path" gorm:"not null"`
	Size         int64      `json:"size" gorm:"not null"`
	MimeType     string     `json:"mime_type" gorm:"column:mime_type;not null"`
	Version      int        `json:"version" gorm:"default:1"`
	ProjectID    int64      `json:"project_id" gorm:"column:project_id;not null"`
	UploadedByID int64      `json:"uploaded_by_id" gorm:"column:uploaded_by_id;not null"`
	Status       Status     `json:"status" gorm:"default:pendente"`
	ReviewedByID *int64     `json:"reviewed_by_id,omitempty" gorm:"column:reviewed_by_id"`
	ReviewNotes  *string    `json:"review_notes,omitempty" gorm:"column:review_notes"`
	UploadedAt   time.Time  `json:"uploaded_at" gorm:"column:uploaded_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
}

func (File) TableName() string {
	return "files"
}

var (
	ErrNotFound          = errors.New("file not found")
	ErrReviewForbidden   = errors.New("insufficient role to review files")
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectNotVisible = errors.New("project not visible to user")
	ErrVersionConflict   = errors.New("concurrent upload produced a version conflict")
)
