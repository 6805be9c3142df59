// README: Vehicle garage handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kerb/internal/http/middleware"
	"kerb/internal/modules/vehicle"
	"kerb/internal/types"
)

type VehicleHandler struct {
	vehicles *vehicle.Service
}

func NewVehicleHandler(svc *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicles: svc}
}

type vehicleResp struct {
	ID        string  `json:"id"`
	Plate     string  `json:"plate"`
	Nickname  *string `json:"nickname,omitempty"`
	Make      *string `json:"make,omitempty"`
	Model     *string `json:"model,omitempty"`
	Color     *string `json:"color,omitempty"`
	IsDefault bool    `json:"is_default"`
	CreatedAt string  `json:"created_at"`
}

func vehicleToResp(v vehicle.Vehicle) vehicleResp {
	return vehicleResp{
		ID:        string(v.ID),
		Plate:     v.Plate,
		Nickname:  v.Nickname,
		Make:      v.Make,
		Model:     v.Model,
		Color:     v.Color,
		IsDefault: v.IsDefault,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *VehicleHandler) List(c *gin.Context) {
	owner := types.ID(middleware.CallerUID(c))
	list, err := h.vehicles.List(c.Request.Context(), owner)
	if err != nil {
		writeVehicleError(c, err)
		return
	}
	out := make([]vehicleResp, len(list))
	for i, v := range list {
		out[i] = vehicleToResp(v)
	}
	writeJSON(c, http.StatusOK, map[string]any{"vehicles": out})
}

type addVehicleReq struct {
	Plate     string  `json:"plate"`
	Nickname  *string `json:"nickname"`
	Make      *string `json:"make"`
	Model     *string `json:"model"`
	Color     *string `json:"color"`
	IsDefault bool    `json:"is_default"`
}

func (h *VehicleHandler) Add(c *gin.Context) {
	var req addVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.vehicles.Add(c.Request.Context(), vehicle.AddCommand{
		OwnerID:   types.ID(middleware.CallerUID(c)),
		Plate:     req.Plate,
		Nickname:  req.Nickname,
		Make:      req.Make,
		Model:     req.Model,
		Color:     req.Color,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		writeVehicleError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"vehicle": vehicleToResp(*v)})
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing vehicle id")
		return
	}
	owner := types.ID(middleware.CallerUID(c))
	if err := h.vehicles.Delete(c.Request.Context(), owner, types.ID(id)); err != nil {
		writeVehicleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}
