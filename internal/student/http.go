package student

import (
	"errors"
	"log/slog"
	"net/http"

	"agency-service/internal/httputil"
	"agency-service/internal/metrics"
	"agency-service/internal/schema"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service        Service
	validate       *validator.Validate
	logger         *slog.Logger
	metrics        *metrics.Metrics
	maxUploadBytes int64
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		service:        service,
		validate:       schema.NewValidator(),
		logger:         logger,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/students", h.CreateStudent)
	router.Get("/students", h.GetAllStudents)
	router.Post("/students/import", h.ImportStudents)
	router.Get("/students/{id}", h.GetStudent)
	router.Put("/students/{id}", h.UpdateStudent)
	router.Patch("/students/{id}", h.PatchStudent)
	router.Delete("/students/{id}", h.DeleteStudent)
	router.Get("/stats/students/stage-counts", h.StageCounts)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var student Student
	if err := httputil.DecodeJSON(r, &student); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&student); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "email", student.Email)
	created, err := h.service.CreateStudent(r.Context(), &student)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCreated(r.Context(), "student")
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	query := r.URL.Query().Get("q")

	h.logger.InfoContext(r.Context(), "fetching all students", "filter", filter)
	students, err := h.service.GetAllStudents(r.Context(), filter, query)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	student, err := h.service.GetStudentByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	var student Student
	if err := httputil.DecodeJSON(r, &student); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&student); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}
	student.ID = id

	h.logger.InfoContext(r.Context(), "updating student", "id", id)
	updated, err := h.service.UpdateStudent(r.Context(), &student)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) PatchStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	var patch Patch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&patch); err != nil {
		httputil.RespondWithFieldErrors(w, schema.FieldErrors(err))
		return
	}

	h.logger.InfoContext(r.Context(), "patching student", "id", id)
	updated, err := h.service.PatchStudent(r.Context(), id, patch)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting student", "id", id)
	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordDeleted(r.Context(), "student")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StageCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.StageCounts(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, counts)
}

// ImportStudents accepts a multipart form with the CSV in field "file".
func (h *Handler) ImportStudents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rows, err := ParseCSV(file)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected student import", "file", header.Filename, "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "importing students", "file", header.Filename, "rows", len(rows))
	result, err := h.service.ImportStudents(r.Context(), rows)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordImport(r.Context(), result.Imported, result.Skipped, result.Failed)
	h.logger.InfoContext(r.Context(), "student import finished",
		"total", result.Total,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		h.logger.InfoContext(r.Context(), "student not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
