package auth_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/drawing-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

// MockUserRepository implements auth.UserRepository for testing
type MockUserRepository struct {
	users  map[string]*auth.User
	hashes map[string]string
	byID   map[int64]*auth.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*auth.User),
		hashes: make(map[string]string),
		byID:   make(map[int64]*auth.User),
	}
}

func (m *MockUserRepository) AddUser(u *auth.User, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.users[u.Email] = u
	m.hashes[u.Email] = string(hash)
	m.byID[u.ID] = u
}

func (m *MockUserRepository) GetCredentialsByEmail(email string) (*auth.User, string, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, "", auth.ErrInvalidCredentials
	}
	return u, m.hashes[email], nil
}

func (m *MockUserRepository) GetByID(userID int64) (*auth.User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

// MockAuthRecorder implements auth.ActivityRecorder
type MockAuthRecorder struct {
	actions []string
}

func (m *MockAuthRecorder) Record(ctx context.Context, userID int64, action, entityType string, entityID *int64, details map[string]any) error {
	m.actions = append(m.actions, action)
	return nil
}

var _ = Describe("Auth Service", func() {
	var (
		mockRepo *MockUserRepository
		recorder *MockAuthRecorder
		service  *auth.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockUserRepository()
		recorder = &MockAuthRecorder{}
		tokenGen := auth.NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcdef",
			0, 0,
		)
		service = auth.NewService(mockRepo, tokenGen, recorder)
		ctx = context.Background()

		mockRepo.AddUser(&auth.User{
			ID:       1,
			Name:     "Paula Projetista",
			Email:    "paula@empresa.com.br",
			Role:     auth.RoleProjetista,
			IsActive: true,
		}, "senha123")
	})

	Describe("Authenticate", func() {
		Context("with valid credentials", func() {
			It("should return tokens and the user summary", func() {
				result, err := service.Authenticate(ctx, auth.LoginDTO{
					Email:    "paula@empresa.com.br",
					Password: "senha123",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.User.Email).To(Equal("paula@empresa.com.br"))
				Expect(result.Tokens.AccessToken).NotTo(BeEmpty())
				Expect(result.Tokens.RefreshToken).NotTo(BeEmpty())
			})

			It("should record the login", func() {
				_, err := service.Authenticate(ctx, auth.LoginDTO{
					Email:    "paula@empresa.com.br",
					Password: "senha123",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(recorder.actions).To(ContainElement("login"))
			})
		})

		Context("with a personal email provider", func() {
			It("should reject before any credential lookup", func() {
				_, err := service.Authenticate(ctx, auth.LoginDTO{
					Email:    "paula@gmail.com",
					Password: "senha123",
				})
				var vErr auth.ValidationError
				Expect(err).To(BeAssignableToTypeOf(vErr))
			})
		})

		Context("with a wrong password", func() {
			It("should return invalid credentials", func() {
				_, err := service.Authenticate(ctx, auth.LoginDTO{
					Email:    "paula@empresa.com.br",
					Password: "senha-errada",
				})
				Expect(err).To(MatchError(auth.ErrInvalidCredentials))
			})
		})

		Context("with an unknown email", func() {
			It("should return invalid credentials", func() {
				_, err := service.Authenticate(ctx, auth.LoginDTO{
					Email:    "ninguem@empresa.com.br",
					Password: "senha123",
				})
				Expect(err).To(MatchError(auth.ErrInvalidCredentials))
			})
		})

		Context("with an inactive user", func() {
			BeforeEach(func() {
				mockRepo.AddUser(&auth.User{
					ID:       2,
					Email:    "inativo@empresa.com.br",
					Role:     auth.RoleAnalista,
					IsActive: false,
				}, "senha123")
			})

			It("should refuse the login", func() {
				_, err := service.Authenticate(ctx, auth.LoginDTO{
					Email:    "inativo@empresa.com.br",
					Password: "senha123",
				})
				Expect(err).To(MatchError(auth.ErrUserInactive))
			})
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue a new token pair from a valid refresh token", func() {
			result, err := service.Authenticate(ctx, auth.LoginDTO{
				Email:    "paula@empresa.com.br",
				Password: "senha123",
			})
			Expect(err).NotTo(HaveOccurred())

			tokens, err := service.RefreshTokens(result.Tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})

		It("should reject garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("should return the claims of a valid token", func() {
			result, err := service.Authenticate(ctx, auth.LoginDTO{
				Email:    "paula@empresa.com.br",
				Password: "senha123",
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(result.Tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
			Expect(claims.Role).To(Equal(string(auth.RoleProjetista)))
		})
	})

	Describe("Logout", func() {
		It("should record the logout", func() {
			Expect(service.Logout(ctx, 1)).To(Succeed())
			Expect(recorder.actions).To(ContainElement("logout"))
		})
	})
})
