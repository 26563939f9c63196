package file_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/frahmantamala/drawing-management/internal/auth"
	"github.com/frahmantamala/drawing-management/internal/core/events"
	"github.com/frahmantamala/drawing-management/internal/file"
	"github.com/frahmantamala/drawing-management/internal/project"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements file.Repository for testing
type MockRepository struct {
	mu         sync.Mutex
	files      map[int64]*file.File
	nextID     int64
	getByIDHit int
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{files: make(map[int64]*file.File), nextID: 1}
}

func (m *MockRepository) Create(f *file.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return m.failError
	}
	for _, existing := range m.files {
		if existing.ProjectID == f.ProjectID && existing.Name == f.Name {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	f.ID = m.nextID
	m.nextID++
	m.files[f.ID] = f
	return nil
}

func (m *MockRepository) GetByID(id int64) (*file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByIDHit++
	if m.shouldFail {
		return nil, m.failError
	}
	f, ok := m.files[id]
	if !ok {
		return nil, file.ErrNotFound
	}
	return f, nil
}

func (m *MockRepository) GetByProject(projectID int64) ([]*file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*file.File
	for _, f := range m.files {
		if f.ProjectID == projectID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *MockRepository) OriginalNameExists(projectID int64, originalName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return false, m.failError
	}
	for _, f := range m.files {
		if f.ProjectID == projectID && f.Name == originalName {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) MaxVersionForBase(projectID int64, baseName string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return 0, m.failError
	}
	max := 0
	for _, f := range m.files {
		base, _ := file.SplitName(f.OriginalName)
		if f.ProjectID == projectID && base == baseName && f.Version > max {
			max = f.Version
		}
	}
	return max, nil
}

func (m *MockRepository) UpdateReview(id int64, status file.Status, reviewerID int64, notes *string, reviewedAt time.Time) (*file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, m.failError
	}
	f, ok := m.files[id]
	if !ok {
		return nil, file.ErrNotFound
	}
	f.Status = status
	f.ReviewedByID = &reviewerID
	f.ReviewNotes = notes
	f.ReviewedAt = &reviewedAt
	return f, nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

// MockBlobStore implements blob.Store in memory
type MockBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{blobs: make(map[string][]byte)}
}

func (m *MockBlobStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *MockBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, file.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// MockProjectGate implements file.ProjectGate
type MockProjectGate struct {
	visibleProjects map[int64]bool
	missingProjects map[int64]bool
}

func NewMockProjectGate() *MockProjectGate {
	return &MockProjectGate{
		visibleProjects: make(map[int64]bool),
		missingProjects: make(map[int64]bool),
	}
}

func (m *MockProjectGate) IsVisible(ctx context.Context, actor *auth.User, projectID int64) (bool, error) {
	if m.missingProjects[projectID] {
		return false, project.ErrNotFound
	}
	return m.visibleProjects[projectID], nil
}

// MockRecorder implements file.ActivityRecorder
type MockRecorder struct {
	mu         sync.Mutex
	actions    []string
	shouldFail bool
}

func (m *MockRecorder) Record(ctx context.Context, userID int64, action, entityType string, entityID *int64, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errors.New("activity write failed")
	}
	m.actions = append(m.actions, action)
	return nil
}

func (m *MockRecorder) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.actions...)
}

// MockEventBus implements file.EventPublisher
type MockEventBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *MockEventBus) Publish(ctx context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventBus) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var types []string
	for _, e := range m.events {
		types = append(types, e.EventType())
	}
	return types
}

func part(name string, size int64) file.UploadPart {
	return file.UploadPart{
		Filename:    name,
		Size:        size,
		ContentType: "application/octet-stream",
		Reader:      bytes.NewReader(make([]byte, 8)),
	}
}

var _ = Describe("File Service", func() {
	var (
		mockRepo  *MockRepository
		mockBlobs *MockBlobStore
		mockGate  *MockProjectGate
		recorder  *MockRecorder
		eventBus  *MockEventBus
		service   *file.Service
		ctx       context.Context

		projetista  *auth.User
		gestorFinal *auth.User
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockBlobs = NewMockBlobStore()
		mockGate = NewMockProjectGate()
		recorder = &MockRecorder{}
		eventBus = &MockEventBus{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = file.NewService(mockRepo, mockBlobs, mockGate, recorder, eventBus, logger)
		ctx = context.Background()

		projetista = &auth.User{ID: 10, Role: auth.RoleProjetista, IsActive: true}
		gestorFinal = &auth.User{ID: 20, Role: auth.RoleGestorFinal, IsActive: true}

		mockGate.visibleProjects[1] = true
	})

	Describe("Upload", func() {
		Context("when the project does not exist", func() {
			BeforeEach(func() {
				mockGate.missingProjects[99] = true
			})

			It("should return project not found", func() {
				_, err := service.Upload(ctx, projetista, 99, []file.UploadPart{part("a.pdf", 10)})
				Expect(err).To(MatchError(file.ErrProjectNotFound))
			})
		})

		Context("when the actor cannot see the project", func() {
			It("should deny the upload", func() {
				_, err := service.Upload(ctx, projetista, 2, []file.UploadPart{part("a.pdf", 10)})
				Expect(err).To(MatchError(file.ErrProjectNotVisible))
			})
		})

		Context("when uploading a fresh file name", func() {
			It("should store it as version 1 with the name unchanged", func() {
				result, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 10)})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Uploaded).To(HaveLen(1))
				Expect(result.Uploaded[0].Name).To(Equal("report.pdf"))
				Expect(result.Uploaded[0].Version).To(Equal(1))
				Expect(result.Uploaded[0].Status).To(Equal(file.StatusPendente))
			})

			It("should write the content under the project key", func() {
				_, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 10)})
				Expect(err).NotTo(HaveOccurred())
				Expect(mockBlobs.blobs).To(HaveKey("projects/1/report.pdf"))
			})

			It("should record the upload and publish an event", func() {
				_, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 10)})
				Expect(err).NotTo(HaveOccurred())
				Expect(recorder.Actions()).To(ContainElement("upload_file"))
				Expect(eventBus.Types()).To(ContainElement(events.FileUploadedEventType))
			})
		})

		Context("when uploading the same name again", func() {
			BeforeEach(func() {
				_, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 10)})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should version the second upload", func() {
				result, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 10)})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Uploaded[0].Name).To(Equal("report_v2.pdf"))
				Expect(result.Uploaded[0].Version).To(Equal(2))
			})

			It("should give a different extension its own first version", func() {
				result, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.dwg", 10)})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Uploaded[0].Name).To(Equal("report.dwg"))
				Expect(result.Uploaded[0].Version).To(Equal(1))
			})
		})

		Context("when the batch mixes valid and invalid files", func() {
			It("should store the valid file and report the rest", func() {
				result, err := service.Upload(ctx, projetista, 1, []file.UploadPart{
					part("plan.dwg", 10),
					part("photo.png", 10),
					part("huge.pdf", 52428801),
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Uploaded).To(HaveLen(1))
				Expect(result.Uploaded[0].Name).To(Equal("plan.dwg"))
				Expect(result.Rejected).To(HaveLen(2))
			})
		})

		Context("when no file in the batch is valid", func() {
			It("should fail with the rejections attached", func() {
				result, err := service.Upload(ctx, projetista, 1, []file.UploadPart{
					part("photo.png", 10),
					part("notes.txt", 10),
				})
				Expect(err).To(MatchError(file.ErrNoValidFiles))
				Expect(result.Rejected).To(HaveLen(2))
				Expect(result.Uploaded).To(BeEmpty())
			})
		})

		Context("when two uploads of the same name race", func() {
			It("should assign versions 1 and 2 exactly once each", func() {
				var wg sync.WaitGroup
				results := make([]*file.UploadResult, 2)
				errs := make([]error, 2)

				for i := 0; i < 2; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						results[i], errs[i] = service.Upload(ctx, projetista, 1, []file.UploadPart{part("tower.dwg", 10)})
					}(i)
				}
				wg.Wait()

				var versions []int
				var names []string
				for i := 0; i < 2; i++ {
					Expect(errs[i]).NotTo(HaveOccurred())
					versions = append(versions, results[i].Uploaded[0].Version)
					names = append(names, results[i].Uploaded[0].Name)
				}
				Expect(versions).To(ConsistOf(1, 2))
				Expect(names).To(ConsistOf("tower.dwg", "tower_v2.dwg"))
			})
		})

		Context("when the activity write fails", func() {
			BeforeEach(func() {
				recorder.shouldFail = true
			})

			It("should fail the upload", func() {
				_, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 10)})
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("SetStatus", func() {
		var fileID int64

		BeforeEach(func() {
			result, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 10)})
			Expect(err).NotTo(HaveOccurred())
			fileID = result.Uploaded[0].ID
		})

		Context("when the actor lacks the review grant", func() {
			It("should deny before touching storage", func() {
				before := mockRepo.getByIDHit
				_, err := service.SetStatus(ctx, projetista, fileID, file.UpdateStatusDTO{Status: file.StatusAprovado})
				Expect(err).To(MatchError(file.ErrReviewForbidden))
				Expect(mockRepo.getByIDHit).To(Equal(before))
			})
		})

		Context("when a reviewer approves", func() {
			It("should stamp the review fields", func() {
				notes := "dimensões conferidas"
				f, err := service.SetStatus(ctx, gestorFinal, fileID, file.UpdateStatusDTO{
					Status:      file.StatusAprovado,
					ReviewNotes: &notes,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Status).To(Equal(file.StatusAprovado))
				Expect(f.ReviewedByID).To(HaveValue(Equal(gestorFinal.ID)))
				Expect(f.ReviewNotes).To(HaveValue(Equal(notes)))
				Expect(f.ReviewedAt).NotTo(BeNil())
			})

			It("should record the review and publish an event", func() {
				_, err := service.SetStatus(ctx, gestorFinal, fileID, file.UpdateStatusDTO{Status: file.StatusRejeitado})
				Expect(err).NotTo(HaveOccurred())
				Expect(recorder.Actions()).To(ContainElement("review_file"))
				Expect(eventBus.Types()).To(ContainElement(events.FileReviewedEventType))
			})
		})

		Context("when re-reviewing a file sent to revisao", func() {
			It("should allow moving it to aprovado", func() {
				_, err := service.SetStatus(ctx, gestorFinal, fileID, file.UpdateStatusDTO{Status: file.StatusRevisao})
				Expect(err).NotTo(HaveOccurred())

				f, err := service.SetStatus(ctx, gestorFinal, fileID, file.UpdateStatusDTO{Status: file.StatusAprovado})
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Status).To(Equal(file.StatusAprovado))
			})
		})

		Context("when the target status is invalid", func() {
			It("should reject pendente as a review target", func() {
				_, err := service.SetStatus(ctx, gestorFinal, fileID, file.UpdateStatusDTO{Status: file.StatusPendente})
				var vErr *file.ValidationError
				Expect(errors.As(err, &vErr)).To(BeTrue())
			})
		})

		Context("when the file does not exist", func() {
			It("should return not found", func() {
				_, err := service.SetStatus(ctx, gestorFinal, 9999, file.UpdateStatusDTO{Status: file.StatusAprovado})
				Expect(err).To(MatchError(file.ErrNotFound))
			})
		})
	})

	Describe("ListByProject", func() {
		It("should return files for a visible project", func() {
			for i := 0; i < 3; i++ {
				_, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part(fmt.Sprintf("f%d.pdf", i), 10)})
				Expect(err).NotTo(HaveOccurred())
			}
			files, err := service.ListByProject(ctx, projetista, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(3))
		})

		It("should deny an invisible project", func() {
			_, err := service.ListByProject(ctx, projetista, 2)
			Expect(err).To(MatchError(file.ErrProjectNotVisible))
		})
	})

	Describe("Download", func() {
		It("should stream the stored content", func() {
			result, err := service.Upload(ctx, projetista, 1, []file.UploadPart{part("report.pdf", 8)})
			Expect(err).NotTo(HaveOccurred())

			f, rc, err := service.Download(ctx, projetista, result.Uploaded[0].ID)
			Expect(err).NotTo(HaveOccurred())
			defer rc.Close()
			Expect(f.Name).To(Equal("report.pdf"))

			data, err := io.ReadAll(rc)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(HaveLen(8))
		})
	})
})
