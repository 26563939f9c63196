package file

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/drawing-management/internal"
	"github.com/frahmantamala/drawing-management/internal/auth"
	"github.com/frahmantamala/drawing-management/internal/transport"
	"github.com/frahmantamala/drawing-management/pkg/logger"
	"github.com/go-chi/chi"
)

// multipartMemory caps how much of a parsed upload stays in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

type ServiceAPI interface {
	Upload(ctx context.Context, actor *auth.User, projectID int64, parts []UploadPart) (*UploadResult, error)
	SetStatus(ctx context.Context, actor *auth.User, fileID int64, dto UpdateStatusDTO) (*File, error)
	ListByProject(ctx context.Context, actor *auth.User, projectID int64) ([]*File, error)
	Download(ctx context.Context, actor *auth.User, fileID int64) (*File, io.ReadCloser, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// UploadFiles accepts a multipart batch under the "files" field.
func (h *Handler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.WriteError(w, http.StatusBadRequest, "no files in request")
		return
	}

	var parts []UploadPart
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "unreadable file part")
			return
		}
		closers = append(closers, src)
		parts = append(parts, UploadPart{
			Filename:    fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      src,
		})
	}

	result, err := h.Service.Upload(r.Context(), actor, projectID, parts)
	if err != nil {
		if errors.Is(err, ErrNoValidFiles) {
			h.WriteJSON(w, http.StatusBadRequest, result)
			return
		}
		h.Logger.Error("UploadFiles: service error", "error", err, "project_id", projectID)
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	files, err := h.Service.ListByProject(r.Context(), actor, projectID)
	if err != nil {
		h.Logger.Error("ListFiles: service error", "error", err, "project_id", projectID)
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, files)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := h.Service.SetStatus(r.Context(), actor, fileID, dto)
	if err != nil {
		h.Logger.Error("UpdateStatus: service error", "error", err, "file_id", fileID)
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	f, rc, err := h.Service.Download(r.Context(), actor, fileID)
	if err != nil {
		h.Logger.Error("DownloadFile: service error", "error", err, "file_id", fileID)
		h.writeServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Error("DownloadFile: stream error", "error", err, "file_id", fileID)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		h.WriteError(w, http.StatusNotFound, "file not found")
	case errors.Is(err, ErrProjectNotFound):
		h.WriteError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, ErrProjectNotVisible), errors.Is(err, ErrReviewForbidden):
		h.WriteError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, ErrVersionConflict):
		h.WriteError(w, http.StatusConflict, "a concurrent upload created the same version, retry")
	case errors.As(err, &vErr):
		h.WriteError(w, http.StatusBadRequest, vErr.Message)
	default:
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
