package activity

import (
	"encoding/json"
	"errors"
	"time"
)

// ActivityLog is one audit trail entry. Details carries action-specific
// context as JSON (file names, changed fields, counts).
type ActivityLog struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	UserID     int64           `json:"user_id" gorm:"column:user_id;not null"`
	Action     string          `json:"action" gorm:"not null"`
	EntityType string          `json:"entity_type" gorm:"column:entity_type;not null"`
	EntityID   *int64          `json:"entity_id,omitempty" gorm:"column:entity_id"`
	Details    json.RawMessage `json:"details,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}

// DashboardStats aggregates the numbers the dashboard cards show. The
// approval rate is a whole percentage of reviewed-and-approved files over all
// files, zero when the scope holds no files.
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalProjects int64 `json:"total_projects"`
	TotalFiles    int64 `json:"total_files"`
	PendingFiles  int64 `json:"pending_files"`
	ApprovedFiles int64 `json:"approved_files"`
	RejectedFiles int64 `json:"rejected_files"`
	ApprovalRate  int   `json:"approval_rate"`
}

var ErrNotFound = errors.New("activity entry not found")
