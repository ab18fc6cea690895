package roster

import (
	"errors"
	"log/slog"
	"net/http"

	"candrive-backend/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes wires the public roster endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events/{event_id}/students", h.listStudents)
	r.Get("/events/{event_id}/students/search", h.searchStudents)
	r.Post("/events/{event_id}/students/verify", h.verifyStudent)
	r.Get("/events/{event_id}/teachers", h.listTeachers)
}

// RegisterAdminRoutes wires the endpoints that sit behind the auth middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/events/{event_id}/students", h.createStudent)
	r.Post("/events/{event_id}/students/import", h.importStudents)
	r.Put("/students/{student_id}", h.updateStudent)
	r.Delete("/students/{student_id}", h.deleteStudent)
	r.Post("/events/{event_id}/teachers/import", h.importTeachers)
	r.Post("/events/{event_id}/maintenance/normalize-homerooms", h.normalizeHomerooms)
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	q := r.URL.Query()
	filter := StudentFilter{
		Grade:           q.Get("grade"),
		Name:            q.Get("name"),
		HomeroomNumber:  q.Get("homeroom_number"),
		HomeroomTeacher: q.Get("homeroom_teacher"),
	}

	students, err := h.service.ListStudents(r.Context(), eventID, filter)
	if err != nil {
		h.logger.Error("failed to list students", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to list students")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) searchStudents(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	query := r.URL.Query().Get("q")
	limit := httputil.QueryInt(r, "limit", defaultSearchLimit)

	students, err := h.service.SearchStudents(r.Context(), eventID, query, limit)
	if err != nil {
		h.logger.Error("failed to search students", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to search students")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) verifyStudent(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var input VerifyInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.service.Verify(r.Context(), eventID, input)
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			httputil.RespondWithError(w, http.StatusBadRequest, "A student name is required")
			return
		}
		h.logger.Error("failed to verify student", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to verify student")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var input CreateStudentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := h.service.CreateStudent(r.Context(), eventID, input)
	if err != nil {
		h.logger.Error("failed to create student", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to create student")
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, student)
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "student_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	var input UpdateStudentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := h.service.UpdateStudent(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
			return
		}
		h.logger.Error("failed to update student", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to update student")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "student_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
			return
		}
		h.logger.Error("failed to delete student", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to delete student")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importStudentsInput struct {
	Students []StudentRow `json:"students" validate:"required,min=1"`
}

func (h *Handler) importStudents(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var input importStudentsInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ImportStudents(r.Context(), eventID, input.Students)
	if err != nil {
		h.logger.Error("failed to import students", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to import students")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) listTeachers(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	teachers, err := h.service.ListTeachers(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to list teachers", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to list teachers")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, teachers)
}

type importTeachersInput struct {
	Teachers []TeacherRow `json:"teachers" validate:"required,min=1"`
}

func (h *Handler) importTeachers(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var input importTeachersInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ImportTeachers(r.Context(), eventID, input.Teachers)
	if err != nil {
		h.logger.Error("failed to import teachers", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to import teachers")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) normalizeHomerooms(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	result, err := h.service.NormalizeHomerooms(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to normalize homerooms", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to normalize homerooms")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}
