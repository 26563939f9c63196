package auth_test

import (
	"github.com/frahmantamala/drawing-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Access Policy", func() {
	Describe("CanPerform", func() {
		It("should grant administrators everything", func() {
			for _, action := range []auth.Action{
				auth.ActionManageUsers,
				auth.ActionManageProjects,
				auth.ActionReviewFiles,
				auth.ActionUploadFiles,
				auth.ActionViewAllProjects,
				auth.ActionViewAllActivity,
			} {
				Expect(auth.CanPerform(auth.RoleAdministrador, action)).To(BeTrue(), string(action))
			}
		})

		It("should grant gestores the same surface as administrators", func() {
			for _, action := range []auth.Action{
				auth.ActionManageUsers,
				auth.ActionManageProjects,
				auth.ActionReviewFiles,
				auth.ActionViewAllProjects,
			} {
				Expect(auth.CanPerform(auth.RoleGestor, action)).To(BeTrue(), string(action))
			}
		})

		It("should let the gestor final review and upload but not manage", func() {
			Expect(auth.CanPerform(auth.RoleGestorFinal, auth.ActionReviewFiles)).To(BeTrue())
			Expect(auth.CanPerform(auth.RoleGestorFinal, auth.ActionUploadFiles)).To(BeTrue())
			Expect(auth.CanPerform(auth.RoleGestorFinal, auth.ActionManageUsers)).To(BeFalse())
			Expect(auth.CanPerform(auth.RoleGestorFinal, auth.ActionManageProjects)).To(BeFalse())
			Expect(auth.CanPerform(auth.RoleGestorFinal, auth.ActionViewAllProjects)).To(BeFalse())
		})

		It("should restrict contributor roles to uploading", func() {
			for _, role := range []auth.Role{auth.RoleEspecialista, auth.RoleAnalista, auth.RoleProjetista} {
				Expect(auth.CanPerform(role, auth.ActionUploadFiles)).To(BeTrue(), string(role))
				Expect(auth.CanPerform(role, auth.ActionReviewFiles)).To(BeFalse(), string(role))
				Expect(auth.CanPerform(role, auth.ActionManageProjects)).To(BeFalse(), string(role))
				Expect(auth.CanPerform(role, auth.ActionViewAllActivity)).To(BeFalse(), string(role))
			}
		})

		It("should deny unknown roles everything", func() {
			Expect(auth.CanPerform(auth.Role("estagiario"), auth.ActionUploadFiles)).To(BeFalse())
		})
	})

	Describe("ValidRole", func() {
		It("should accept the six known roles", func() {
			for _, role := range auth.Roles() {
				Expect(auth.ValidRole(role)).To(BeTrue(), string(role))
			}
		})

		It("should reject anything else", func() {
			Expect(auth.ValidRole(auth.Role("root"))).To(BeFalse())
			Expect(auth.ValidRole(auth.Role(""))).To(BeFalse())
		})
	})

	Describe("IsCorporateEmail", func() {
		It("should reject personal providers", func() {
			for _, email := range []string{
				"a@gmail.com", "b@hotmail.com", "c@yahoo.com", "d@outlook.com", "e@live.com",
			} {
				Expect(auth.IsCorporateEmail(email)).To(BeFalse(), email)
			}
		})

		It("should accept corporate domains", func() {
			Expect(auth.IsCorporateEmail("maria@empresa.com.br")).To(BeTrue())
		})

		It("should reject addresses without a domain", func() {
			Expect(auth.IsCorporateEmail("maria")).To(BeFalse())
			Expect(auth.IsCorporateEmail("maria@")).To(BeFalse())
		})
	})
})
