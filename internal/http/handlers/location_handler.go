// README: Saved car location handlers, with distance derivation for the locator view.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kerb/internal/http/middleware"
	"kerb/internal/metrics"
	"kerb/internal/modules/location"
	"kerb/internal/types"
)

// WalkEstimator is the optional routed walking estimate. Nil means
// straight-line only.
type WalkEstimator interface {
	WalkEstimate(ctx context.Context, origin, destination types.Point) (time.Duration, int, error)
}

type LocationHandler struct {
	locations *location.Service
	walker    WalkEstimator
}

func NewLocationHandler(svc *location.Service, walker WalkEstimator) *LocationHandler {
	return &LocationHandler{locations: svc, walker: walker}
}

type locationResp struct {
	ID        string   `json:"id"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	PhotoURL  *string  `json:"photo_url,omitempty"`
	SessionID *string  `json:"session_id,omitempty"`
	LotName   *string  `json:"lot_name,omitempty"`
	Section   *string  `json:"section,omitempty"`
	CreatedAt string   `json:"created_at"`

	// Derived when the caller supplies its position.
	DistanceM   *float64 `json:"distance_meters,omitempty"`
	WalkMinutes *int     `json:"walk_minutes,omitempty"`
	RoutedETA   *int     `json:"routed_eta_minutes,omitempty"`
}

func locationToResp(l *location.SavedLocation) locationResp {
	resp := locationResp{
		ID:        string(l.ID),
		Lat:       l.Position.Latitude,
		Lng:       l.Position.Longitude,
		Accuracy:  l.Position.Accuracy,
		Notes:     l.Notes,
		PhotoURL:  l.PhotoURL,
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.SessionID != nil {
		id := string(*l.SessionID)
		resp.SessionID = &id
	}
	if l.Lot != nil {
		resp.LotName = &l.Lot.Name
	}
	if l.Section != nil {
		resp.Section = &l.Section.Name
	}
	return resp
}

// Active returns the caller's saved car location. With lat/lng query params
// it also derives straight-line distance, walking minutes, and (when a maps
// client is configured) a routed walking ETA.
func (h *LocationHandler) Active(c *gin.Context) {
	owner := types.ID(middleware.CallerUID(c))
	loc, fromCache, err := h.locations.FetchActive(c.Request.Context(), owner)
	if err != nil {
		writeLocationError(c, err)
		return
	}
	if fromCache {
		metrics.LocationCacheFallbacks.Inc()
	}
	if loc == nil {
		writeJSON(c, http.StatusOK, map[string]any{"location": nil})
		return
	}
	resp := locationToResp(loc)

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			writeError(c, http.StatusBadRequest, "invalid lat/lng")
			return
		}
		here := types.Point{Lat: lat, Lng: lng}
		car := loc.Position.Point()
		d := location.DistanceMeters(here, car)
		mins := location.WalkMinutes(d)
		resp.DistanceM = &d
		resp.WalkMinutes = &mins
		if h.walker != nil {
			// Routed estimate is best effort; straight-line numbers stand on
			// failure.
			if eta, _, err := h.walker.WalkEstimate(c.Request.Context(), here, car); err == nil {
				routed := int(eta.Round(time.Minute) / time.Minute)
				resp.RoutedETA = &routed
			}
		}
	}
	writeJSON(c, http.StatusOK, map[string]any{"location": resp})
}

type saveLocationReq struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Accuracy  *float64 `json:"accuracy"`
	SessionID *string  `json:"session_id"`
	LotID     *string  `json:"lot_id"`
	SectionID *string  `json:"section_id"`
	SpotID    *string  `json:"spot_id"`
	Notes     *string  `json:"notes"`
	PhotoURL  *string  `json:"photo_url"`
}

func (h *LocationHandler) Save(c *gin.Context) {
	var req saveLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := location.SaveCommand{
		OwnerID: types.ID(middleware.CallerUID(c)),
		Position: types.GeoPosition{
			Latitude:  req.Lat,
			Longitude: req.Lng,
			Accuracy:  req.Accuracy,
		},
		Notes:    req.Notes,
		PhotoURL: req.PhotoURL,
	}
	cmd.SessionID = idPtr(req.SessionID)
	cmd.LotID = idPtr(req.LotID)
	cmd.SectionID = idPtr(req.SectionID)
	cmd.SpotID = idPtr(req.SpotID)

	loc, err := h.locations.Save(c.Request.Context(), cmd)
	if err != nil {
		writeLocationError(c, err)
		return
	}
	metrics.LocationsSaved.Inc()
	writeJSON(c, http.StatusCreated, map[string]any{"location": locationToResp(loc)})
}

type patchLocationReq struct {
	Notes     *string `json:"notes"`
	PhotoURL  *string `json:"photo_url"`
	SessionID *string `json:"session_id"`
	SpotID    *string `json:"spot_id"`
}

func (h *LocationHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing location id")
		return
	}
	var req patchLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	owner := types.ID(middleware.CallerUID(c))
	patch := location.Patch{
		Notes:     req.Notes,
		PhotoURL:  req.PhotoURL,
		SessionID: idPtr(req.SessionID),
		SpotID:    idPtr(req.SpotID),
	}
	if err := h.locations.Update(c.Request.Context(), owner, types.ID(id), patch); err != nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *LocationHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing location id")
		return
	}
	owner := types.ID(middleware.CallerUID(c))
	if err := h.locations.Delete(c.Request.Context(), owner, types.ID(id)); err != nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}

func idPtr(s *string) *types.ID {
	if s == nil {
		return nil
	}
	id := types.ID(*s)
	return &id
}
