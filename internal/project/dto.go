package project

import (
	"errors"
	"fmt"
)

// CreateProjectDTO carries the project fields plus the users to bulk-assign
// at creation time.
type CreateProjectDTO struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Priority        Priority `json:"priority"`
	Status          Status   `json:"status"`
	AssignedUserIDs []int64  `json:"assigned_user_ids"`
}

func (dto *CreateProjectDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.Priority == "" {
		dto.Priority = PriorityMedia
	}
	if !ValidPriority(dto.Priority) {
		return fmt.Errorf("unknown priority %q", dto.Priority)
	}
	if dto.Status == "" {
		dto.Status = StatusPlanejamento
	}
	if !ValidStatus(dto.Status) {
		return fmt.Errorf("unknown status %q", dto.Status)
	}
	return nil
}

// UpdateProjectDTO is a partial update: nil fields are left untouched.
type UpdateProjectDTO struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
}

func (dto UpdateProjectDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.Priority != nil && !ValidPriority(*dto.Priority) {
		return fmt.Errorf("unknown priority %q", *dto.Priority)
	}
	if dto.Status != nil && !ValidStatus(*dto.Status) {
		return fmt.Errorf("unknown status %q", *dto.Status)
	}
	return nil
}
