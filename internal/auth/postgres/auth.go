package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/drawing-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(email string) (*auth.User, string, error) {
	var (
		user         auth.User
		passwordHash string
	)
	query := `SELECT id, name, email, role, is_active, password_hash FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.IsActive, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", fmt.Errorf("user not found")
		}
		return nil, "", err
	}
	return &user, passwordHash, nil
}

func (r *Repository) GetByID(userID int64) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, name, email, role, is_active FROM users WHERE id = ?`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}
