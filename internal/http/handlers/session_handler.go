// README: Session handlers for create/extend/end/active.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kerb/internal/http/middleware"
	"kerb/internal/metrics"
	"kerb/internal/modules/session"
	"kerb/internal/types"
)

type SessionHandler struct {
	sessions *session.Service
}

func NewSessionHandler(svc *session.Service) *SessionHandler {
	return &SessionHandler{sessions: svc}
}

type createSessionReq struct {
	TierID        string  `json:"tier_id"`
	DurationHours float64 `json:"duration_hours"`
	VehicleID     *string `json:"vehicle_id"`
	PlateEntry    *string `json:"plate_entry"`
	SpotID        *string `json:"spot_id"`
}

type sessionResp struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"`
	Token      string   `json:"token"`
	StartedAt  string   `json:"started_at"`
	ExpiresAt  string   `json:"expires_at"`
	EndedAt    *string  `json:"ended_at,omitempty"`
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	RemainingS int      `json:"remaining_seconds"`
	VehicleID  *string  `json:"vehicle_id,omitempty"`
	PlateEntry *string  `json:"plate_entry,omitempty"`
	Plate      *string  `json:"plate,omitempty"`
	LotName    *string  `json:"lot_name,omitempty"`
	SpotNumber *string  `json:"spot_number,omitempty"`
}

func sessionToResp(s *session.Session, now time.Time) sessionResp {
	resp := sessionResp{
		ID:         string(s.ID),
		Status:     string(session.PresentedStatus(s, now)),
		Token:      s.Token,
		StartedAt:  s.StartedAt.UTC().Format(time.RFC3339),
		ExpiresAt:  s.ExpiresAt.UTC().Format(time.RFC3339),
		Amount:     s.Accrued.Amount,
		Currency:   s.Accrued.Currency,
		RemainingS: int(s.Remaining(now).Seconds()),
		PlateEntry: s.PlateEntry,
	}
	if s.EndedAt != nil {
		ended := s.EndedAt.UTC().Format(time.RFC3339)
		resp.EndedAt = &ended
	}
	if s.VehicleID != nil {
		id := string(*s.VehicleID)
		resp.VehicleID = &id
	}
	if s.Vehicle != nil {
		resp.Plate = &s.Vehicle.Plate
	}
	if s.Spot != nil {
		resp.LotName = &s.Spot.LotName
		resp.SpotNumber = &s.Spot.Number
	}
	return resp
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := session.CreateCommand{
		OwnerID:       types.ID(middleware.CallerUID(c)),
		TierID:        types.ID(req.TierID),
		DurationHours: req.DurationHours,
		PlateEntry:    req.PlateEntry,
	}
	if req.VehicleID != nil {
		id := types.ID(*req.VehicleID)
		cmd.VehicleID = &id
	}
	if req.SpotID != nil {
		id := types.ID(*req.SpotID)
		cmd.SpotID = &id
	}
	sess, err := h.sessions.Create(c.Request.Context(), cmd)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	metrics.SessionsStarted.Inc()
	writeJSON(c, http.StatusCreated, sessionToResp(sess, time.Now()))
}

type extendSessionReq struct {
	AdditionalHours float64 `json:"additional_hours"`
}

func (h *SessionHandler) Extend(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing session id")
		return
	}
	var req extendSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.authorize(c, types.ID(id)); err != nil {
		return
	}
	if err := h.sessions.Extend(c.Request.Context(), types.ID(id), req.AdditionalHours); err != nil {
		writeSessionError(c, err)
		return
	}
	metrics.SessionsExtended.Inc()
	sess, err := h.sessions.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sessionToResp(sess, time.Now()))
}

func (h *SessionHandler) End(c *gin.Context) {
	h.finish(c, h.sessions.End, session.StatusCompleted)
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	h.finish(c, h.sessions.Cancel, session.StatusCancelled)
}

func (h *SessionHandler) finish(c *gin.Context, op func(ctx context.Context, id types.ID) error, to session.Status) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing session id")
		return
	}
	if err := h.authorize(c, types.ID(id)); err != nil {
		return
	}
	if err := op(c.Request.Context(), types.ID(id)); err != nil {
		writeSessionError(c, err)
		return
	}
	metrics.SessionsEnded.WithLabelValues(string(to)).Inc()
	writeJSON(c, http.StatusOK, map[string]any{"status": to})
}

func (h *SessionHandler) Active(c *gin.Context) {
	owner := types.ID(middleware.CallerUID(c))
	list, err := h.sessions.FetchActive(c.Request.Context(), owner)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	now := time.Now()
	out := make([]sessionResp, len(list))
	for i, s := range list {
		out[i] = sessionToResp(s, now)
	}
	writeJSON(c, http.StatusOK, map[string]any{"sessions": out})
}

// authorize loads the session and confirms the caller owns it. Writes the
// error response itself so callers just return on failure.
func (h *SessionHandler) authorize(c *gin.Context, id types.ID) error {
	sess, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		writeSessionError(c, err)
		return err
	}
	if string(sess.OwnerID) != middleware.CallerUID(c) {
		writeError(c, http.StatusForbidden, "forbidden: session belongs to another user")
		return session.ErrBadRequest
	}
	return nil
}
