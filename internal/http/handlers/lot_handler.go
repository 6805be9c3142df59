// README: Lot catalog handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kerb/internal/modules/lot"
	"kerb/internal/types"
)

type LotHandler struct {
	lots *lot.Service
}

func NewLotHandler(svc *lot.Service) *LotHandler {
	return &LotHandler{lots: svc}
}

type lotResp struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Address  *string       `json:"address,omitempty"`
	Lat      float64       `json:"lat"`
	Lng      float64       `json:"lng"`
	Sections []sectionResp `json:"sections"`
	Tiers    []tierResp    `json:"tiers"`
}

type sectionResp struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Level      int    `json:"level"`
	TotalSpots int    `json:"total_spots"`
	FreeSpots  int    `json:"free_spots"`
}

type tierResp struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	HourlyRate float64  `json:"hourly_rate"`
	DailyCap   *float64 `json:"daily_cap,omitempty"`
	Currency   string   `json:"currency"`
}

func lotToResp(l lot.Lot) lotResp {
	resp := lotResp{
		ID:       string(l.ID),
		Name:     l.Name,
		Address:  l.Address,
		Lat:      l.Position.Lat,
		Lng:      l.Position.Lng,
		Sections: make([]sectionResp, len(l.Sections)),
		Tiers:    make([]tierResp, len(l.Tiers)),
	}
	for i, s := range l.Sections {
		resp.Sections[i] = sectionResp{
			ID:         string(s.ID),
			Name:       s.Name,
			Code:       s.Code,
			Level:      s.Level,
			TotalSpots: s.TotalSpots,
			FreeSpots:  s.FreeSpots,
		}
	}
	for i, t := range l.Tiers {
		resp.Tiers[i] = tierResp{
			ID:         string(t.ID),
			Name:       t.Name,
			HourlyRate: t.HourlyRate,
			DailyCap:   t.DailyCap,
			Currency:   t.Currency,
		}
	}
	return resp
}

func (h *LotHandler) List(c *gin.Context) {
	lots, err := h.lots.Lots(c.Request.Context())
	if err != nil {
		writeLotError(c, err)
		return
	}
	out := make([]lotResp, len(lots))
	for i, l := range lots {
		out[i] = lotToResp(l)
	}
	writeJSON(c, http.StatusOK, map[string]any{"lots": out})
}

func (h *LotHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing lot id")
		return
	}
	l, err := h.lots.Lot(c.Request.Context(), types.ID(id))
	if err != nil {
		writeLotError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"lot": lotToResp(*l)})
}
