package user

import (
	"errors"
	"fmt"

	"github.com/frahmantamala/drawing-management/internal/auth"
)

// CreateUserDTO represents the request payload for creating a user.
type CreateUserDTO struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
	IsActive *bool     `json:"is_active,omitempty"`
}

// Validate checks the payload shape. allowedDomains, when non-empty, is the
// corporate domain allow-list from system settings.
func (dto CreateUserDTO) Validate(allowedDomains []string) error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if !auth.IsCorporateEmail(dto.Email) {
		return errors.New("use a corporate email address")
	}
	if len(allowedDomains) > 0 {
		domain := auth.EmailDomain(dto.Email)
		found := false
		for _, d := range allowedDomains {
			if domain == d {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("email domain %s is not allowed", domain)
		}
	}
	if len(dto.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if !auth.ValidRole(dto.Role) {
		return fmt.Errorf("unknown role %q", dto.Role)
	}
	return nil
}

// UpdateUserDTO is a partial update: nil fields are left untouched. An empty
// password means "keep the current one".
type UpdateUserDTO struct {
	Name     *string    `json:"name,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Password *string    `json:"password,omitempty"`
	Role     *auth.Role `json:"role,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate(allowedDomains []string) error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.Email != nil {
		if !auth.IsCorporateEmail(*dto.Email) {
			return errors.New("use a corporate email address")
		}
		if len(allowedDomains) > 0 {
			domain := auth.EmailDomain(*dto.Email)
			found := false
			for _, d := range allowedDomains {
				if domain == d {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("email domain %s is not allowed", domain)
			}
		}
	}
	if dto.Password != nil && *dto.Password != "" && len(*dto.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if dto.Role != nil && !auth.ValidRole(*dto.Role) {
		return fmt.Errorf("unknown role %q", *dto.Role)
	}
	return nil
}
