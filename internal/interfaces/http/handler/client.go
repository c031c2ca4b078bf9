package handler

import (
	appclient "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/client"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client account and style profile requests
type ClientHandler struct {
	BaseHandler
	clientService  *appclient.ClientService
	profileService *appclient.ProfileService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *appclient.ClientService, profileService *appclient.ProfileService) *ClientHandler {
	return &ClientHandler{
		clientService:  clientService,
		profileService: profileService,
	}
}

// List godoc
// @Summary      List clients
// @Description  List clients with search and pagination
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search by name or email"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" Enums(created_at, updated_at, first_name, last_name, email, credits)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]appclient.ClientResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var filter appclient.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	clients, total, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Create client
// @Description  Create a client account. Only super admins may grant admin roles.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body appclient.CreateClientRequest true "Client"
// @Success      201 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req appclient.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.clientService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID godoc
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update godoc
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body appclient.UpdateClientRequest true "Client"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req appclient.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.clientService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete client
// @Description  Delete a client with their closet, outfits, shopping list and profile
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=appclient.DeleteClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.clientService.Delete(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AddCredits godoc
// @Summary      Grant credits
// @Description  Add background-removal credits to a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body appclient.AddCreditsRequest true "Credits"
// @Param        Idempotency-Key header string false "Key that makes a retry safe"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/credits [post]
func (h *ClientHandler) AddCredits(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req appclient.AddCreditsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.clientService.AddCredits(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetProfile godoc
// @Summary      Get style profile
// @Description  A client without a profile gets an empty one
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=appclient.StyleProfileResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/profile [get]
func (h *ClientHandler) GetProfile(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.profileService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateProfile godoc
// @Summary      Replace style profile
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body appclient.StyleProfileRequest true "Style profile"
// @Success      200 {object} dto.Response{data=appclient.StyleProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/profile [put]
func (h *ClientHandler) UpdateProfile(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req appclient.StyleProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.profileService.Upsert(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
