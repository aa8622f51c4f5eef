package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/services"
)

type BrandHandler struct {
	brands services.BrandService
}

func NewBrandHandler(brands services.BrandService) *BrandHandler {
	return &BrandHandler{brands: brands}
}

// GET /api/brands
func (h *BrandHandler) List(c *gin.Context) {
	list, err := h.brands.List(c.Request.Context())
	if err != nil {
		respondErr(c, err, "list_brands_failed")
		return
	}
	response.RespondOK(c, gin.H{"brands": list})
}

// GET /api/brands/:id
func (h *BrandHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_brand_id")
	if !ok {
		return
	}
	b, err := h.brands.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "get_brand_failed")
		return
	}
	response.RespondOK(c, gin.H{"brand": b})
}

// POST /api/brands
func (h *BrandHandler) Create(c *gin.Context) {
	var in services.CreateBrandInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.brands.CreateCompetitor(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err, "create_brand_failed")
		return
	}
	response.RespondCreated(c, gin.H{"brand": b})
}
