package postgres

import (
	"time"

	"github.com/frahmantamala/drawing-management/internal/project"
	"gorm.io/gorm"
)

// ProjectRepository implements the project.Repository interface using GORM
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.Repository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(p *project.Project) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.db.Create(p).Error
}

func (r *ProjectRepository) GetByID(id int64) (*project.Project, error) {
	var p project.Project
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, project.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) GetAll() ([]*project.Project, error) {
	var projects []*project.Project
	err := r.db.Order("updated_at DESC").Find(&projects).Error
	return projects, err
}

// GetByUser lists only projects the user is assigned to.
func (r *ProjectRepository) GetByUser(userID int64) ([]*project.Project, error) {
	var projects []*project.Project
	err := r.db.
		Joins("INNER JOIN project_assignments pa ON pa.project_id = projects.id").
		Where("pa.user_id = ?", userID).
		Order("projects.updated_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(id int64, updates map[string]interface{}) (*project.Project, error) {
	updates["updated_at"] = time.Now()

	tx := r.db.Model(&project.Project{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, project.ErrNotFound
	}

	return r.GetByID(id)
}

// Assign creates the (project, user) link; the pair is unique so re-assigning
// is a no-op.
func (r *ProjectRepository) Assign(projectID, userID int64) error {
	var existing project.Assignment
	err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	return r.db.Create(&project.Assignment{
		ProjectID:  projectID,
		UserID:     userID,
		AssignedAt: time.Now(),
	}).Error
}

func (r *ProjectRepository) Unassign(projectID, userID int64) error {
	return r.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&project.Assignment{}).Error
}

func (r *ProjectRepository) AssignedUsers(projectID int64) ([]*project.AssignedUser, error) {
	query := `SELECT u.id, u.name, u.email, u.role, u.is_active, pa.assigned_at
	          FROM users u
	          INNER JOIN project_assignments pa ON pa.user_id = u.id
	          WHERE pa.project_id = ?
	          ORDER BY u.name ASC`

	rows, err := r.db.Raw(query, projectID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*project.AssignedUser
	for rows.Next() {
		var u project.AssignedUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.AssignedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *ProjectRepository) IsAssigned(projectID, userID int64) (bool, error) {
	var n int64
	err := r.db.Model(&project.Assignment{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&n).Error
	return n > 0, err
}
