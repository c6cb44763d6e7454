package share

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/handler"
	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/share"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/httputil"
)

// AccessChecker is satisfied by access.Resolver.
type AccessChecker interface {
	Require(ctx context.Context, patientID, userID uuid.UUID, required model.AccessLevel) (model.AccessLevel, error)
}

type Handler struct {
	service share.ShareService
	access  AccessChecker
}

func NewHandler(service share.ShareService, access AccessChecker) *Handler {
	return &Handler{
		service: service,
		access:  access,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:id/shares", h.CreateShare)
	r.GET("/patients/:id/shares", h.ListShares)
	r.GET("/patients/:id/pending-shares", h.ListPendingShares)
	r.DELETE("/shares/:id", h.RevokeShare)
	r.POST("/pending-shares/:id/claim", h.ClaimPendingShare)
	r.GET("/me/invitations", h.ListInvitations)
}

type createShareResponse struct {
	Share             *model.PatientShare `json:"share,omitempty"`
	PendingShare      *model.PendingShare `json:"pending_share,omitempty"`
	NotificationError string              `json:"notification_error,omitempty"`
}

// CreateShare grants access to a registered user or invites an email
// address. Only callers with admin access to the patient may share it.
func (h *Handler) CreateShare(c *gin.Context) {
	userID, patientID, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req model.CreateShareRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	res, err := h.service.CreateShare(c.Request.Context(), patientID, userID, req.Email, model.AccessLevel(req.AccessLevel), req.ExpiresAt)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp := createShareResponse{
		Share:        res.Share,
		PendingShare: res.PendingShare,
	}
	if res.NotificationError != nil {
		var appErr *errors.AppError
		if errors.As(res.NotificationError, &appErr) {
			resp.NotificationError = appErr.Message
		} else {
			resp.NotificationError = "invitation email could not be sent"
		}
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, resp)
}

func (h *Handler) ListShares(c *gin.Context) {
	_, patientID, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	shares, err := h.service.ListShares(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, shares)
}

func (h *Handler) ListPendingShares(c *gin.Context) {
	_, patientID, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	pending, err := h.service.ListPendingShares(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, pending)
}

func (h *Handler) RevokeShare(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}
	shareID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RevokeShare(c.Request.Context(), shareID, userID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClaimPendingShare redeems an invitation for the caller. The token's email
// must match the invited address.
func (h *Handler) ClaimPendingShare(c *gin.Context) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return
	}
	pendingID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.ClaimPendingShare(c.Request.Context(), pendingID, userID, middleware.UserEmail(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, s)
}

func (h *Handler) ListInvitations(c *gin.Context) {
	if _, ok := handler.CurrentUser(c); !ok {
		return
	}

	invitations, err := h.service.ListInvitationsForEmail(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, invitations)
}

func (h *Handler) requireAdmin(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := handler.CurrentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	patientID, ok := handler.ParamID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	if _, err := h.access.Require(c.Request.Context(), patientID, userID, model.AccessAdmin); err != nil {
		httputil.RespondWithError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, patientID, true
}
