package postgres

import (
	"time"

	"github.com/frahmantamala/drawing-management/internal/activity"
	"gorm.io/gorm"
)

// ActivityRepository implements the activity.Repository interface using GORM
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(entry *activity.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

func (r *ActivityRepository) Recent(limit int) ([]*activity.ActivityLog, error) {
	var entries []*activity.ActivityLog
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *ActivityRepository) RecentForUser(userID int64, limit int) ([]*activity.ActivityLog, error) {
	var entries []*activity.ActivityLog
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Counts aggregates project and file totals. With a userID the scope narrows
// to projects the user is assigned to, matching what their dashboard shows.
func (r *ActivityRepository) Counts(userID *int64) (*activity.DashboardStats, error) {
	stats := &activity.DashboardStats{}

	userQuery := `SELECT COUNT(*) FROM users WHERE is_active = true`
	projectQuery := `SELECT COUNT(*) FROM projects`
	fileQuery := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'pendente'),
		COUNT(*) FILTER (WHERE status = 'aprovado'),
		COUNT(*) FILTER (WHERE status = 'rejeitado')
	FROM files`

	var args []interface{}
	if userID != nil {
		projectQuery += ` WHERE id IN (SELECT project_id FROM project_assignments WHERE user_id = ?)`
		fileQuery += ` WHERE project_id IN (SELECT project_id FROM project_assignments WHERE user_id = ?)`
		args = append(args, *userID)
	}

	if err := r.db.Raw(userQuery).Scan(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := r.db.Raw(projectQuery, args...).Scan(&stats.TotalProjects).Error; err != nil {
		return nil, err
	}

	row := r.db.Raw(fileQuery, args...).Row()
	if err := row.Scan(&stats.TotalFiles, &stats.PendingFiles, &stats.ApprovedFiles, &stats.RejectedFiles); err != nil {
		return nil, err
	}

	return stats, nil
}
