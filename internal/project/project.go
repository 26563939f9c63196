package project

import (
	"errors"
	"time"

	"github.com/frahmantamala/drawing-management/internal/auth"
)

type Priority string

const (
	PriorityBaixa   Priority = "baixa"
	PriorityMedia   Priority = "media"
	PriorityAlta    Priority = "alta"
	PriorityCritica Priority = "critica"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityBaixa, PriorityMedia, PriorityAlta, PriorityCritica:
		return true
	}
	return false
}

type Status string

const (
	StatusPlanejamento      Status = "planejamento"
	StatusEmAndamento       Status = "em_andamento"
	StatusAguardandoRevisao Status = "aguardando_revisao"
	StatusAprovado          Status = "aprovado"
	StatusCancelado         Status = "cancelado"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPlanejamento, StatusEmAndamento, StatusAguardandoRevisao, StatusAprovado, StatusCancelado:
		return true
	}
	return false
}

type Project struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority" gorm:"default:media"`
	Status      Status    `json:"status" gorm:"default:planejamento"`
	CreatedByID int64     `json:"created_by_id" gorm:"column:created_by_id;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Assignment links a user to a project. At most one row per (project, user)
// pair, enforced by a unique index.
type Assignment struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	ProjectID  int64     `json:"project_id" gorm:"column:project_id;not null"`
	UserID     int64     `json:"user_id" gorm:"column:user_id;not null"`
	AssignedAt time.Time `json:"assigned_at" gorm:"column:assigned_at"`
}

func (Assignment) TableName() string {
	return "project_assignments"
}

// AssignedUser is the password-free user view returned by the assignments
// endpoint.
type AssignedUser struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       auth.Role `json:"role"`
	IsActive   bool      `json:"is_active"`
	AssignedAt time.Time `json:"assigned_at"`
}

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("insufficient role for project management")
)
