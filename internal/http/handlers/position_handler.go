// README: Position fix handlers; record device fixes and read the last one back.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kerb/internal/http/middleware"
	"kerb/internal/metrics"
	"kerb/internal/modules/position"
	"kerb/internal/types"
)

type PositionHandler struct {
	store *position.Store
}

func NewPositionHandler(store *position.Store) *PositionHandler {
	return &PositionHandler{store: store}
}

type recordFixReq struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy"`
	Heading  *float64 `json:"heading"`
}

func (h *PositionHandler) RecordFix(c *gin.Context) {
	var req recordFixReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	owner := types.ID(middleware.CallerUID(c))
	pos := types.GeoPosition{
		Latitude:  req.Lat,
		Longitude: req.Lng,
		Accuracy:  req.Accuracy,
		Heading:   req.Heading,
	}
	if err := h.store.RecordFix(c.Request.Context(), owner, pos, time.Now()); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	metrics.PositionFixesRecorded.Inc()
	writeJSON(c, http.StatusCreated, map[string]any{"status": "ok"})
}

func (h *PositionHandler) LastFix(c *gin.Context) {
	owner := types.ID(middleware.CallerUID(c))
	pos, at, ok, err := h.store.LastFix(c.Request.Context(), owner)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeJSON(c, http.StatusOK, map[string]any{"fix": nil})
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"fix": map[string]any{
		"lat":         pos.Latitude,
		"lng":         pos.Longitude,
		"accuracy":    pos.Accuracy,
		"heading":     pos.Heading,
		"recorded_at": at.UTC().Format(time.RFC3339),
	}})
}
