package postgres

import (
	"strings"
	"time"

	"github.com/frahmantamala/drawing-management/internal/file"
	"gorm.io/gorm"
)

// FileRepository implements the file.Repository interface using GORM
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) file.Repository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(f *file.File) error {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}
	return r.db.Create(f).Error
}

func (r *FileRepository) GetByID(id int64) (*file.File, error) {
	var f file.File
	err := r.db.Where("id = ?", id).First(&f).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, file.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) GetByProject(projectID int64) ([]*file.File, error) {
	var files []*file.File
	err := r.db.
		Where("project_id = ?", projectID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

// OriginalNameExists checks for a prior upload with this exact stored name.
// The first upload keeps its original name, so an exact match means the name
// is taken and the next revision needs a version suffix.
func (r *FileRepository) OriginalNameExists(projectID int64, originalName string) (bool, error) {
	var n int64
	err := r.db.Model(&file.File{}).
		Where("project_id = ? AND name = ?", projectID, originalName).
		Count(&n).Error
	return n > 0, err
}

// MaxVersionForBase scans the project's files and returns the highest version
// among those sharing baseName. Extension stripping happens here rather than
// in SQL so .dwg and .pdf revisions of the same drawing share a version line.
func (r *FileRepository) MaxVersionForBase(projectID int64, baseName string) (int, error) {
	type row struct {
		OriginalName string
		Version      int
	}
	var rows []row
	err := r.db.Model(&file.File{}).
		Select("original_name, version").
		Where("project_id = ?", projectID).
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, rw := range rows {
		base, _ := file.SplitName(rw.OriginalName)
		if base == baseName && rw.Version > max {
			max = rw.Version
		}
	}
	return max, nil
}

func (r *FileRepository) UpdateReview(id int64, status file.Status, reviewerID int64, notes *string, reviewedAt time.Time) (*file.File, error) {
	updates := map[string]interface{}{
		"status":         status,
		"reviewed_by_id": reviewerID,
		"reviewed_at":    reviewedAt,
	}
	if notes != nil {
		updates["review_notes"] = strings.TrimSpace(*notes)
	}

	tx := r.db.Model(&file.File{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, file.ErrNotFound
	}

	return r.GetByID(id)
}
