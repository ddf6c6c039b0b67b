package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"coursedeck-service/internal/app"
	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/player"
)

// APIHandler exposes the course catalog, admin lifecycle, enrollment and
// playback use cases over REST. Identity arrives in X-User-ID, X-User-Name
// and X-User-Role headers set by the gateway.
type APIHandler struct {
	courses  *app.CourseService
	learning *app.LearningService
	log      *zap.Logger
}

func NewAPIHandler(courses *app.CourseService, learning *app.LearningService, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{courses: courses, learning: learning, log: log}
}

// Register wires all routes onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/courses", h.listCourses)
	mux.HandleFunc("POST /api/courses", h.createCourse)
	mux.HandleFunc("GET /api/courses/{id}", h.getCourse)
	mux.HandleFunc("PUT /api/courses/{id}", h.updateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", h.softDeleteCourse)
	mux.HandleFunc("POST /api/courses/{id}/restore", h.restoreCourse)
	mux.HandleFunc("DELETE /api/courses/{id}/permanent", h.permanentlyDeleteCourse)
	mux.HandleFunc("GET /api/admin/courses", h.listAllCourses)
	mux.HandleFunc("POST /api/admin/purge", h.purgeExpired)

	mux.HandleFunc("POST /api/courses/{id}/enroll", h.enroll)
	mux.HandleFunc("POST /api/courses/{id}/checkout", h.createCheckout)
	mux.HandleFunc("POST /api/courses/{id}/checkout/complete", h.completeCheckout)
	mux.HandleFunc("GET /api/enrollments", h.listEnrollments)
	mux.HandleFunc("GET /api/courses/{id}/enrollment", h.getEnrollment)

	mux.HandleFunc("PUT /api/courses/{id}/progress", h.updateProgress)
	mux.HandleFunc("POST /api/courses/{id}/lessons/{lessonId}/slides/{slideId}/submit", h.submitQuiz)
	mux.HandleFunc("POST /api/courses/{id}/final-exam", h.submitFinalExam)
	mux.HandleFunc("POST /api/courses/{id}/certificate", h.issueCertificate)
	mux.HandleFunc("PUT /api/courses/{id}/certificate", h.saveCertificate)
	mux.HandleFunc("GET /api/courses/{id}/playback", h.playbackState)
}

func (h *APIHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListPublicCourses(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *APIHandler) listAllCourses(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		h.writeError(w, errForbidden)
		return
	}
	courses, err := h.courses.ListAllCourses(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *APIHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !isAdmin(r) {
		h.writeError(w, errForbidden)
		return
	}
	var course domain.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		h.writeError(w, errBadBody)
		return
	}
	created, err := h.courses.CreateCourse(r.Context(), userID, course)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *APIHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *APIHandler) updateCourse(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		h.writeError(w, errForbidden)
		return
	}
	var course domain.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		h.writeError(w, errBadBody)
		return
	}
	course.ID = r.PathValue("id")
	updated, err := h.courses.UpdateCourse(r.Context(), course)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *APIHandler) softDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		h.writeError(w, errForbidden)
		return
	}
	if err := h.courses.SoftDeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) restoreCourse(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		h.writeError(w, errForbidden)
		return
	}
	if err := h.courses.RestoreCourse(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) permanentlyDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		h.writeError(w, errForbidden)
		return
	}
	if err := h.courses.PermanentlyDeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) purgeExpired(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		h.writeError(w, errForbidden)
		return
	}
	purged, err := h.courses.PurgeExpired(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"purged": purged})
}

func (h *APIHandler) enroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	enrollment, err := h.learning.Enroll(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *APIHandler) createCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	url, err := h.learning.CreateCheckout(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *APIHandler) completeCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Session string `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, errBadBody)
		return
	}
	enrollment, err := h.learning.CompleteCheckout(r.Context(), userID, r.PathValue("id"), body.Session)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *APIHandler) listEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	enrollments, err := h.learning.ListEnrollments(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

func (h *APIHandler) getEnrollment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	enrollment, err := h.learning.GetEnrollment(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

// updateProgress stores the resume pointer. Failures are logged and the
// response is still 204: losing a resume position must never interrupt
// playback.
func (h *APIHandler) updateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		LessonID   string `json:"lessonId"`
		SlideIndex int    `json:"slideIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, errBadBody)
		return
	}
	if err := h.learning.UpdateProgress(r.Context(), userID, r.PathValue("id"), body.LessonID, body.SlideIndex); err != nil {
		h.log.Warn("progress update failed",
			zap.String("userId", userID),
			zap.String("courseId", r.PathValue("id")),
			zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var sub domain.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeError(w, errBadBody)
		return
	}
	result, err := h.learning.SubmitQuiz(r.Context(), userID, r.PathValue("id"), r.PathValue("lessonId"), r.PathValue("slideId"), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) submitFinalExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var sub domain.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeError(w, errBadBody)
		return
	}
	result, err := h.learning.SubmitFinalExam(r.Context(), userID, r.PathValue("id"), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) issueCertificate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cert, err := h.learning.IssueCertificate(r.Context(), userID, r.Header.Get("X-User-Name"), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"certificate": cert})
}

func (h *APIHandler) saveCertificate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Certificate string `json:"certificate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, errBadBody)
		return
	}
	if err := h.learning.SaveCertificate(r.Context(), userID, r.PathValue("id"), body.Certificate); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type playbackResponse struct {
	LessonIndex        int                       `json:"lessonIndex"`
	SlideIndex         int                       `json:"slideIndex"`
	State              player.State              `json:"state"`
	NextDisabled       bool                      `json:"nextDisabled"`
	PreviousDisabled   bool                      `json:"previousDisabled"`
	FinalExamReachable bool                      `json:"finalExamReachable"`
	Slide              []player.ProjectedElement `json:"slide,omitempty"`
}

func (h *APIHandler) playbackState(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sess, err := h.learning.PlaybackState(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := playbackResponse{
		LessonIndex:        sess.LessonIndex,
		SlideIndex:         sess.SlideIndex,
		State:              sess.State(),
		NextDisabled:       sess.NextDisabled(),
		PreviousDisabled:   sess.PreviousDisabled(),
		FinalExamReachable: sess.FinalExamReachable(),
	}

	// Viewport dimensions are optional; when present the slide comes back
	// projected into screen coordinates.
	if vw, err := strconv.ParseFloat(r.URL.Query().Get("viewportWidth"), 64); err == nil && vw > 0 {
		panes, _ := strconv.Atoi(r.URL.Query().Get("panes"))
		if slide := sess.Slide(); slide != nil {
			projector := player.Projector{}
			resp.Slide = projector.ProjectSlide(*slide, projector.ScaleFor(vw, panes))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

var (
	errUnauthorized = errors.New("missing user identity")
	errForbidden    = errors.New("admin role required")
	errBadBody      = errors.New("invalid request body")
)

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": errUnauthorized.Error()})
		return "", false
	}
	return userID, true
}

func isAdmin(r *http.Request) bool {
	return r.Header.Get("X-User-Role") == "admin"
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrCourseNotFound),
		errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrSlideNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrFinalExamNotFound),
		errors.Is(err, domain.ErrEnrollmentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCourseNotFree),
		errors.Is(err, domain.ErrEmptySubmission),
		errors.Is(err, domain.ErrCheckoutNotFound),
		errors.Is(err, errBadBody):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrExamLocked), errors.Is(err, errForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errUnauthorized):
		status = http.StatusUnauthorized
	default:
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			status = http.StatusUnprocessableEntity
		} else if errors.Is(err, domain.ErrDuplicateFinalExam) {
			status = http.StatusUnprocessableEntity
		} else {
			h.log.Error("request failed", zap.Error(err))
		}
	}
	writeJSON(w, status, map[string]string{"message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
