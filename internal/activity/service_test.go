package activity_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/frahmantamala/drawing-management/internal/activity"
	"github.com/frahmantamala/drawing-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"log/slog"
	"os"
)

func TestActivityService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Activity Service Suite")
}

// MockRepository implements activity.Repository for testing
type MockRepository struct {
	entries []*activity.ActivityLog
	stats   map[string]*activity.DashboardStats
}

func NewMockRepository() *MockRepository {
	return &MockRepository{stats: make(map[string]*activity.DashboardStats)}
}

func (m *MockRepository) Create(entry *activity.ActivityLog) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockRepository) Recent(limit int) ([]*activity.ActivityLog, error) {
	if len(m.entries) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func (m *MockRepository) RecentForUser(userID int64, limit int) ([]*activity.ActivityLog, error) {
	var result []*activity.ActivityLog
	for _, e := range m.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRepository) Counts(userID *int64) (*activity.DashboardStats, error) {
	key := "global"
	if userID != nil {
		key = "user"
	}
	stats, ok := m.stats[key]
	if !ok {
		return &activity.DashboardStats{}, nil
	}
	copied := *stats
	return &copied, nil
}

var _ = Describe("Activity Service", func() {
	var (
		mockRepo *MockRepository
		service  *activity.Service
		ctx      context.Context

		gestor     *auth.User
		projetista *auth.User
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = activity.NewService(mockRepo, logger)
		ctx = context.Background()

		gestor = &auth.User{ID: 1, Role: auth.RoleGestor, IsActive: true}
		projetista = &auth.User{ID: 2, Role: auth.RoleProjetista, IsActive: true}
	})

	Describe("Record", func() {
		It("should persist the entry with marshaled details", func() {
			entityID := int64(7)
			err := service.Record(ctx, 1, "upload_file", "file", &entityID, map[string]any{
				"file_name": "report.pdf",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.entries).To(HaveLen(1))

			var details map[string]any
			Expect(json.Unmarshal(mockRepo.entries[0].Details, &details)).To(Succeed())
			Expect(details).To(HaveKeyWithValue("file_name", "report.pdf"))
		})

		It("should leave details empty when none are given", func() {
			Expect(service.Record(ctx, 1, "login", "user", nil, nil)).To(Succeed())
			Expect(mockRepo.entries[0].Details).To(BeEmpty())
		})
	})

	Describe("Recent", func() {
		BeforeEach(func() {
			Expect(service.Record(ctx, 1, "login", "user", nil, nil)).To(Succeed())
			Expect(service.Record(ctx, 2, "upload_file", "file", nil, nil)).To(Succeed())
			Expect(service.Record(ctx, 2, "login", "user", nil, nil)).To(Succeed())
		})

		It("should return everything for privileged roles", func() {
			entries, err := service.Recent(ctx, gestor, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
		})

		It("should scope contributors to their own actions", func() {
			entries, err := service.Recent(ctx, projetista, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			for _, e := range entries {
				Expect(e.UserID).To(Equal(projetista.ID))
			}
		})

		It("should apply a default limit when none is given", func() {
			entries, err := service.Recent(ctx, gestor, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
		})
	})

	Describe("Stats", func() {
		Context("with reviewed files in scope", func() {
			BeforeEach(func() {
				mockRepo.stats["global"] = &activity.DashboardStats{
					TotalProjects: 2,
					TotalFiles:    4,
					PendingFiles:  1,
					ApprovedFiles: 3,
				}
			})

			It("should compute a rounded approval rate", func() {
				stats, err := service.Stats(ctx, gestor)
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.ApprovalRate).To(Equal(75))
			})
		})

		Context("with no files in scope", func() {
			It("should report a zero approval rate", func() {
				stats, err := service.Stats(ctx, gestor)
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.TotalFiles).To(BeZero())
				Expect(stats.ApprovalRate).To(BeZero())
			})
		})

		Context("for contributors", func() {
			BeforeEach(func() {
				mockRepo.stats["user"] = &activity.DashboardStats{TotalFiles: 3, ApprovedFiles: 1}
				mockRepo.stats["global"] = &activity.DashboardStats{TotalFiles: 100, ApprovedFiles: 100}
			})

			It("should use the scoped counts", func() {
				stats, err := service.Stats(ctx, projetista)
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.TotalFiles).To(Equal(int64(3)))
				Expect(stats.ApprovalRate).To(Equal(33))
			})
		})
	})
})
