package handler

import (
	appshopping "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/shopping"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShoppingHandler handles shopping list requests
type ShoppingHandler struct {
	BaseHandler
	shoppingService *appshopping.ShoppingService
}

// NewShoppingHandler creates a new shopping handler
func NewShoppingHandler(shoppingService *appshopping.ShoppingService) *ShoppingHandler {
	return &ShoppingHandler{shoppingService: shoppingService}
}

// List godoc
// @Summary      List shopping items
// @Tags         shopping
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        purchased query bool false "Filter by purchased state"
// @Param        search query string false "Search by name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" Enums(created_at, updated_at, name, price, purchased)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]appshopping.ShoppingItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/shopping [get]
func (h *ShoppingHandler) List(c *gin.Context) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var filter appshopping.ShoppingListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.shoppingService.List(c.Request.Context(), clientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Add shopping item
// @Tags         shopping
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body appshopping.ShoppingItemRequest true "Shopping item"
// @Success      201 {object} dto.Response{data=appshopping.ShoppingItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/shopping [post]
func (h *ShoppingHandler) Create(c *gin.Context) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req appshopping.ShoppingItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.shoppingService.Create(c.Request.Context(), clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Update godoc
// @Summary      Update shopping item
// @Tags         shopping
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        shoppingId path string true "Shopping item ID" format(uuid)
// @Param        request body appshopping.ShoppingItemRequest true "Shopping item"
// @Success      200 {object} dto.Response{data=appshopping.ShoppingItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/shopping/{shoppingId} [put]
func (h *ShoppingHandler) Update(c *gin.Context) {
	clientID, itemID, ok := h.shoppingParams(c)
	if !ok {
		return
	}
	var req appshopping.ShoppingItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.shoppingService.Update(c.Request.Context(), clientID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SetPurchased godoc
// @Summary      Mark shopping item purchased
// @Description  Clients may tick off their own list
// @Tags         shopping
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        shoppingId path string true "Shopping item ID" format(uuid)
// @Param        request body appshopping.SetPurchasedRequest true "Purchased state"
// @Success      200 {object} dto.Response{data=appshopping.ShoppingItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/shopping/{shoppingId}/purchased [patch]
func (h *ShoppingHandler) SetPurchased(c *gin.Context) {
	clientID, itemID, ok := h.shoppingParams(c)
	if !ok {
		return
	}
	var req appshopping.SetPurchasedRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.shoppingService.SetPurchased(c.Request.Context(), clientID, itemID, *req.Purchased)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete shopping item
// @Tags         shopping
// @Param        id path string true "Client ID" format(uuid)
// @Param        shoppingId path string true "Shopping item ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/shopping/{shoppingId} [delete]
func (h *ShoppingHandler) Delete(c *gin.Context) {
	clientID, itemID, ok := h.shoppingParams(c)
	if !ok {
		return
	}

	if err := h.shoppingService.Delete(c.Request.Context(), clientID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ShoppingHandler) shoppingParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	itemID, ok := h.paramUUID(c, "shoppingId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, itemID, true
}
