package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/services"
)

type TargetBrandHandler struct {
	targets services.TargetBrandService
}

func NewTargetBrandHandler(targets services.TargetBrandService) *TargetBrandHandler {
	return &TargetBrandHandler{targets: targets}
}

// GET /api/target-brands?active=true
func (h *TargetBrandHandler) List(c *gin.Context) {
	list, err := h.targets.List(c.Request.Context(), boolQuery(c, "active", false))
	if err != nil {
		respondErr(c, err, "list_target_brands_failed")
		return
	}
	response.RespondOK(c, gin.H{"target_brands": list})
}

// POST /api/target-brands
func (h *TargetBrandHandler) Create(c *gin.Context) {
	var in services.CreateTargetBrandInput
	if !bindJSON(c, &in) {
		return
	}
	tb, err := h.targets.Create(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err, "create_target_brand_failed")
		return
	}
	response.RespondCreated(c, gin.H{"target_brand": tb})
}

// GET /api/target-brands/:id
func (h *TargetBrandHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_target_brand_id")
	if !ok {
		return
	}
	tb, err := h.targets.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "get_target_brand_failed")
		return
	}
	response.RespondOK(c, gin.H{"target_brand": tb})
}

// PATCH /api/target-brands/:id
func (h *TargetBrandHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_target_brand_id")
	if !ok {
		return
	}
	var in services.UpdateTargetBrandInput
	if !bindJSON(c, &in) {
		return
	}
	tb, err := h.targets.Update(c.Request.Context(), id, in)
	if err != nil {
		respondErr(c, err, "update_target_brand_failed")
		return
	}
	response.RespondOK(c, gin.H{"target_brand": tb})
}

// POST /api/target-brands/:id/start-schedule
func (h *TargetBrandHandler) StartSchedule(c *gin.Context) { h.setScheduled(c, true) }

// POST /api/target-brands/:id/stop-schedule
func (h *TargetBrandHandler) StopSchedule(c *gin.Context) { h.setScheduled(c, false) }

func (h *TargetBrandHandler) setScheduled(c *gin.Context, scheduled bool) {
	id, ok := uuidParam(c, "id", "invalid_target_brand_id")
	if !ok {
		return
	}
	tb, err := h.targets.SetScheduled(c.Request.Context(), id, scheduled)
	if err != nil {
		respondErr(c, err, "schedule_target_brand_failed")
		return
	}
	response.RespondOK(c, gin.H{"target_brand": tb})
}
