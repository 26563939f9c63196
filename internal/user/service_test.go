package user_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/drawing-management/internal/auth"
	"github.com/frahmantamala/drawing-management/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"log/slog"
	"os"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.Repository for testing
type MockRepository struct {
	users  map[int64]*user.User
	nextID int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[int64]*user.User), nextID: 1}
}

func (m *MockRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *MockRepository) GetByEmail(email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *MockRepository) GetAll() ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		if u.IsActive {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *MockRepository) Create(u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) Update(id int64, updates map[string]interface{}) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := updates["email"]; ok {
		u.Email = v.(string)
	}
	if v, ok := updates["role"]; ok {
		u.Role = v.(auth.Role)
	}
	if v, ok := updates["is_active"]; ok {
		u.IsActive = v.(bool)
	}
	if v, ok := updates["password_hash"]; ok {
		u.PasswordHash = v.(string)
	}
	return u, nil
}

// MockHasher implements user.PasswordHasher
type MockHasher struct{}

func (MockHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

// MockDomainSource implements user.EmailDomainSource
type MockDomainSource struct {
	domains []string
}

func (m *MockDomainSource) AllowedEmailDomains(ctx context.Context) []string {
	return m.domains
}

// MockUserRecorder implements user.ActivityRecorder
type MockUserRecorder struct {
	actions []string
}

func (m *MockUserRecorder) Record(ctx context.Context, userID int64, action, entityType string, entityID *int64, details map[string]any) error {
	m.actions = append(m.actions, action)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		mockRepo *MockRepository
		domains  *MockDomainSource
		recorder *MockUserRecorder
		service  *user.Service
		ctx      context.Context

		admin      *auth.User
		projetista *auth.User
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		domains = &MockDomainSource{}
		recorder = &MockUserRecorder{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, MockHasher{}, domains, recorder, logger)
		ctx = context.Background()

		admin = &auth.User{ID: 1, Role: auth.RoleAdministrador, IsActive: true}
		projetista = &auth.User{ID: 2, Role: auth.RoleProjetista, IsActive: true}
	})

	Describe("Create", func() {
		validDTO := func() user.CreateUserDTO {
			return user.CreateUserDTO{
				Name:     "Elisa Especialista",
				Email:    "elisa@empresa.com.br",
				Password: "senha123",
				Role:     auth.RoleEspecialista,
			}
		}

		Context("when the actor manages users", func() {
			It("should create an active user with a hashed password", func() {
				u, err := service.Create(ctx, admin, validDTO())
				Expect(err).NotTo(HaveOccurred())
				Expect(u.ID).NotTo(BeZero())
				Expect(u.IsActive).To(BeTrue())
				Expect(u.PasswordHash).To(Equal("hashed:senha123"))
			})

			It("should record the creation", func() {
				_, err := service.Create(ctx, admin, validDTO())
				Expect(err).NotTo(HaveOccurred())
				Expect(recorder.actions).To(ContainElement("create_user"))
			})
		})

		Context("when the actor lacks the manage grant", func() {
			It("should deny", func() {
				_, err := service.Create(ctx, projetista, validDTO())
				Expect(err).To(MatchError(user.ErrForbidden))
			})
		})

		Context("when the email is already registered", func() {
			BeforeEach(func() {
				_, err := service.Create(ctx, admin, validDTO())
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return email taken", func() {
				_, err := service.Create(ctx, admin, validDTO())
				Expect(err).To(MatchError(user.ErrEmailTaken))
			})
		})

		Context("when the email is on a personal provider", func() {
			It("should reject", func() {
				dto := validDTO()
				dto.Email = "elisa@gmail.com"
				_, err := service.Create(ctx, admin, dto)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when an allow-list is configured", func() {
			BeforeEach(func() {
				domains.domains = []string{"empresa.com.br"}
			})

			It("should accept listed domains", func() {
				_, err := service.Create(ctx, admin, validDTO())
				Expect(err).NotTo(HaveOccurred())
			})

			It("should reject unlisted corporate domains", func() {
				dto := validDTO()
				dto.Email = "elisa@outra-firma.com"
				_, err := service.Create(ctx, admin, dto)
				Expect(err).To(MatchError(ContainSubstring("not allowed")))
			})
		})

		Context("when the role is unknown", func() {
			It("should reject", func() {
				dto := validDTO()
				dto.Role = auth.Role("chefe")
				_, err := service.Create(ctx, admin, dto)
				Expect(err).To(MatchError(ContainSubstring("unknown role")))
			})
		})
	})

	Describe("Update", func() {
		var existingID int64

		BeforeEach(func() {
			u, err := service.Create(ctx, admin, user.CreateUserDTO{
				Name:     "Andre Analista",
				Email:    "andre@empresa.com.br",
				Password: "senha123",
				Role:     auth.RoleAnalista,
			})
			Expect(err).NotTo(HaveOccurred())
			existingID = u.ID
		})

		It("should apply only the provided fields", func() {
			name := "Andre A. Silva"
			u, err := service.Update(ctx, admin, existingID, user.UpdateUserDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("Andre A. Silva"))
			Expect(u.Email).To(Equal("andre@empresa.com.br"))
			Expect(u.PasswordHash).To(Equal("hashed:senha123"))
		})

		It("should keep the stored hash when password is absent", func() {
			active := false
			u, err := service.Update(ctx, admin, existingID, user.UpdateUserDTO{IsActive: &active})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.IsActive).To(BeFalse())
			Expect(u.PasswordHash).To(Equal("hashed:senha123"))
		})

		It("should rehash a new password", func() {
			pw := "nova-senha"
			u, err := service.Update(ctx, admin, existingID, user.UpdateUserDTO{Password: &pw})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PasswordHash).To(Equal("hashed:nova-senha"))
		})

		It("should deny non-managers", func() {
			name := "x"
			_, err := service.Update(ctx, projetista, existingID, user.UpdateUserDTO{Name: &name})
			Expect(err).To(MatchError(user.ErrForbidden))
		})

		It("should return not found for unknown users", func() {
			name := "x"
			_, err := service.Update(ctx, admin, 9999, user.UpdateUserDTO{Name: &name})
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("List", func() {
		It("should deny non-managers", func() {
			_, err := service.List(ctx, projetista)
			Expect(err).To(MatchError(user.ErrForbidden))
		})

		It("should return users for managers", func() {
			_, err := service.Create(ctx, admin, user.CreateUserDTO{
				Name: "Paula", Email: "paula@empresa.com.br", Password: "senha123", Role: auth.RoleProjetista,
			})
			Expect(err).NotTo(HaveOccurred())

			users, err := service.List(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
		})
	})
})
