package auth

import (
	"log/slog"
	"net/http"
)

// Role is one of the fixed user categories controlling authorization.
type Role string

const (
	RoleAdministrador Role = "administrador"
	RoleGestor        Role = "gestor"
	RoleEspecialista  Role = "especialista"
	RoleAnalista      Role = "analista"
	RoleProjetista    Role = "projetista"
	RoleGestorFinal   Role = "gestor_final"
)

func Roles() []Role {
	return []Role{
		RoleAdministrador,
		RoleGestor,
		RoleEspecialista,
		RoleAnalista,
		RoleProjetista,
		RoleGestorFinal,
	}
}

func ValidRole(r Role) bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// Action names a mutating or privileged operation gated by the policy table.
type Action string

const (
	ActionManageUsers     Action = "manage_users"
	ActionManageProjects  Action = "manage_projects"
	ActionReviewFiles     Action = "review_files"
	ActionUploadFiles     Action = "upload_files"
	ActionViewAllProjects Action = "view_all_projects"
	ActionViewAllActivity Action = "view_all_activity"
)

// grants is the single capability table consulted before every gated
// operation. Roles missing an action are denied; upload is open to every
// authenticated active user.
var grants = map[Role]map[Action]bool{
	RoleAdministrador: {
		ActionManageUsers:     true,
		ActionManageProjects:  true,
		ActionReviewFiles:     true,
		ActionUploadFiles:     true,
		ActionViewAllProjects: true,
		ActionViewAllActivity: true,
	},
	RoleGestor: {
		ActionManageUsers:     true,
		ActionManageProjects:  true,
		ActionReviewFiles:     true,
		ActionUploadFiles:     true,
		ActionViewAllProjects: true,
		ActionViewAllActivity: true,
	},
	RoleGestorFinal: {
		ActionReviewFiles: true,
		ActionUploadFiles: true,
	},
	RoleEspecialista: {
		ActionUploadFiles: true,
	},
	RoleAnalista: {
		ActionUploadFiles: true,
	},
	RoleProjetista: {
		ActionUploadFiles: true,
	},
}

// CanPerform reports whether role is granted action.
func CanPerform(role Role, action Action) bool {
	return grants[role][action]
}

// PolicyGuard gates routes on the capability table.
type PolicyGuard struct {
	logger *slog.Logger
}

func NewPolicyGuard(logger *slog.Logger) *PolicyGuard {
	return &PolicyGuard{logger: logger}
}

func (g *PolicyGuard) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !CanPerform(user.Role, action) {
				g.logger.WarnContext(r.Context(), "access denied: role lacks action",
					"user_id", user.ID,
					"role", user.Role,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
