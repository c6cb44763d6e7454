package appointment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/appointment"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/httputil"
)

const codeConflictDetected = "CONFLICT_DETECTED"

// Service is satisfied by *appointment.Service.
type Service interface {
	CheckConflicts(ctx context.Context, userID uuid.UUID, req *model.ConflictCheckRequest) ([]appointment.Conflict, error)
	Schedule(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Reschedule(ctx context.Context, userID, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)
	Complete(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)
	ListForPatient(ctx context.Context, userID, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/conflicts", h.CheckConflicts)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id/reschedule", h.RescheduleAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.POST("/:id/complete", h.CompleteAppointment)
	}
	r.GET("/patients/:id/appointments", h.ListPatientAppointments)
}

type conflictResponse struct {
	HasConflicts bool                   `json:"has_conflicts"`
	Conflicts    []appointment.Conflict `json:"conflicts"`
}

func newConflictResponse(conflicts []appointment.Conflict) conflictResponse {
	if conflicts == nil {
		conflicts = []appointment.Conflict{}
	}
	return conflictResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
	}
}

// CheckConflicts is the dry run. It answers 200 whether or not the slot is
// free.
func (h *Handler) CheckConflicts(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	var req model.ConflictCheckRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	conflicts, err := h.service.CheckConflicts(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, newConflictResponse(conflicts))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}

	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	a, err := h.service.Schedule(c.Request.Context(), userID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	a, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.RescheduleAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	a, err := h.service.Reschedule(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	a, err := fn(c.Request.Context(), userID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) ListPatientAppointments(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}
	patientID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	appointments, err := h.service.ListForPatient(c.Request.Context(), userID, patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appointments)
}

// respondWithError renders a conflict list as 409 so the client can show it
// and retry with force.
func respondWithError(c *gin.Context, err error) {
	var conflictErr *appointment.ConflictError
	if errors.As(err, &conflictErr) {
		_ = c.Error(err)
		httputil.RespondWithErrorData(c, http.StatusConflict, codeConflictDetected, conflictErr.Error(),
			newConflictResponse(conflictErr.Conflicts))
		return
	}
	httputil.RespondWithError(c, err)
}
