package handler

import (
	appoutfit "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/outfit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OutfitHandler handles outfit requests
type OutfitHandler struct {
	BaseHandler
	outfitService *appoutfit.OutfitService
}

// NewOutfitHandler creates a new outfit handler
func NewOutfitHandler(outfitService *appoutfit.OutfitService) *OutfitHandler {
	return &OutfitHandler{outfitService: outfitService}
}

// List godoc
// @Summary      List outfits
// @Tags         outfits
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        search query string false "Search by name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" Enums(created_at, updated_at, name)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]appoutfit.OutfitResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/outfits [get]
func (h *OutfitHandler) List(c *gin.Context) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var filter appoutfit.OutfitListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	outfits, total, err := h.outfitService.List(c.Request.Context(), clientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, outfits, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get outfit
// @Tags         outfits
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        outfitId path string true "Outfit ID" format(uuid)
// @Success      200 {object} dto.Response{data=appoutfit.OutfitResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/outfits/{outfitId} [get]
func (h *OutfitHandler) GetByID(c *gin.Context) {
	clientID, outfitID, ok := h.outfitParams(c)
	if !ok {
		return
	}

	result, err := h.outfitService.GetByID(c.Request.Context(), clientID, outfitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create godoc
// @Summary      Create outfit
// @Description  Save a canvas composition with its PNG preview (base64 data URL)
// @Tags         outfits
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body appoutfit.CreateOutfitRequest true "Outfit"
// @Success      201 {object} dto.Response{data=appoutfit.OutfitResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/outfits [post]
func (h *OutfitHandler) Create(c *gin.Context) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req appoutfit.CreateOutfitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.outfitService.Create(c.Request.Context(), clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Update godoc
// @Summary      Update outfit
// @Description  Replace an outfit. A new preview replaces the stored image.
// @Tags         outfits
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        outfitId path string true "Outfit ID" format(uuid)
// @Param        request body appoutfit.UpdateOutfitRequest true "Outfit"
// @Success      200 {object} dto.Response{data=appoutfit.OutfitResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/outfits/{outfitId} [put]
func (h *OutfitHandler) Update(c *gin.Context) {
	clientID, outfitID, ok := h.outfitParams(c)
	if !ok {
		return
	}
	var req appoutfit.UpdateOutfitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.outfitService.Update(c.Request.Context(), clientID, outfitID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete outfit
// @Tags         outfits
// @Param        id path string true "Client ID" format(uuid)
// @Param        outfitId path string true "Outfit ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/outfits/{outfitId} [delete]
func (h *OutfitHandler) Delete(c *gin.Context) {
	clientID, outfitID, ok := h.outfitParams(c)
	if !ok {
		return
	}

	if err := h.outfitService.Delete(c.Request.Context(), clientID, outfitID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *OutfitHandler) outfitParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	outfitID, ok := h.paramUUID(c, "outfitId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, outfitID, true
}
