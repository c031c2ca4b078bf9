package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	appcloset "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to disk
const multipartMemory = 32 << 20

// ItemHandler handles closet item requests
type ItemHandler struct {
	BaseHandler
	itemService *appcloset.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *appcloset.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Upload godoc
// @Summary      Upload closet item
// @Description  Upload a clothing image. With remove_background the acting admin is charged one credit.
// @Tags         items
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        file formData file true "Image (jpeg, png, webp, gif)"
// @Param        category_id formData string true "Category ID" format(uuid)
// @Param        name formData string false "Item name"
// @Param        tag_ids formData []string false "Tag IDs" collectionFormat(multi)
// @Param        remove_background formData bool false "Remove the image background"
// @Param        Idempotency-Key header string false "Key that makes a retry safe"
// @Success      201 {object} dto.Response{data=appcloset.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      402 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/items [post]
func (h *ItemHandler) Upload(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body is too large")
			return
		}
		h.BadRequest(c, "Expected a multipart form")
		return
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(firstFormValue(c, "category_id", "categoryId")))
	if err != nil {
		h.BadRequest(c, "category_id is required and must be a UUID")
		return
	}
	tagIDs, err := parseTagIDs(append(c.PostFormArray("tag_ids"), c.PostFormArray("tagIds")...))
	if err != nil {
		h.BadRequest(c, "tag_ids must be UUIDs")
		return
	}
	removeBg := false
	if raw := firstFormValue(c, "remove_background", "removeBackground"); raw != "" {
		removeBg, err = strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "remove_background must be a boolean")
			return
		}
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	limit := h.itemService.MaxUploadSize()
	if header.Size > limit {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Image exceeds the upload limit")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if int64(len(data)) > limit {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Image exceeds the upload limit")
		return
	}

	result, err := h.itemService.Upload(c.Request.Context(), appcloset.UploadItemInput{
		ClientID:         clientID,
		ActorID:          actor.ID,
		CategoryID:       categoryID,
		Name:             c.PostForm("name"),
		TagIDs:           tagIDs,
		RemoveBackground: removeBg,
		Filename:         header.Filename,
		Data:             data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List closet items
// @Tags         items
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        category_id query string false "Filter by category" format(uuid)
// @Param        tag_ids query []string false "Items carrying every tag" collectionFormat(multi)
// @Param        search query string false "Search by name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" Enums(created_at, updated_at, name)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]appcloset.ItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/items [get]
func (h *ItemHandler) List(c *gin.Context) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var filter appcloset.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.itemService.List(c.Request.Context(), clientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Summary godoc
// @Summary      Closet summary
// @Description  Count a client's items per category
// @Tags         items
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcloset.ClosetSummaryResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/items/summary [get]
func (h *ItemHandler) Summary(c *gin.Context) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.itemService.Summary(c.Request.Context(), clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByID godoc
// @Summary      Get closet item
// @Tags         items
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        itemId path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcloset.ItemResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/items/{itemId} [get]
func (h *ItemHandler) GetByID(c *gin.Context) {
	clientID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	result, err := h.itemService.GetByID(c.Request.Context(), clientID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update godoc
// @Summary      Update closet item
// @Description  Rename, recategorize or retag an item. Omitted fields are unchanged.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        itemId path string true "Item ID" format(uuid)
// @Param        request body appcloset.UpdateItemRequest true "Changes"
// @Success      200 {object} dto.Response{data=appcloset.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/items/{itemId} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	clientID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}
	var req appcloset.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.itemService.Update(c.Request.Context(), clientID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete closet item
// @Description  Deletes the images and removes the item from every outfit
// @Tags         items
// @Param        id path string true "Client ID" format(uuid)
// @Param        itemId path string true "Item ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/items/{itemId} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	clientID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), clientID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ItemHandler) itemParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	clientID, ok := h.paramUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	itemID, ok := h.paramUUID(c, "itemId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, itemID, true
}

// parseTagIDs accepts repeated fields as well as one comma separated field
// firstFormValue returns the first non-empty form field among names.
// Upload fields are read in snake_case with camelCase aliases.
func firstFormValue(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.PostForm(name); v != "" {
			return v
		}
	}
	return ""
}

func parseTagIDs(values []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
