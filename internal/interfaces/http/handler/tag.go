package handler

import (
	appcloset "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/closet"
	"github.com/gin-gonic/gin"
)

// TagHandler handles tag group and tag requests
type TagHandler struct {
	BaseHandler
	tagService *appcloset.TagService
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *appcloset.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// ListGroups godoc
// @Summary      List tag groups
// @Description  List every tag group with its tags
// @Tags         tags
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcloset.TagGroupResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tag-groups [get]
func (h *TagHandler) ListGroups(c *gin.Context) {
	result, err := h.tagService.ListGroups(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreateGroup godoc
// @Summary      Create tag group
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        request body appcloset.CreateTagGroupRequest true "Tag group"
// @Success      201 {object} dto.Response{data=appcloset.TagGroupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tag-groups [post]
func (h *TagHandler) CreateGroup(c *gin.Context) {
	var req appcloset.CreateTagGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.tagService.CreateGroup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UpdateGroup godoc
// @Summary      Update tag group
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        id path string true "Tag group ID" format(uuid)
// @Param        request body appcloset.UpdateTagGroupRequest true "Tag group"
// @Success      200 {object} dto.Response{data=appcloset.TagGroupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tag-groups/{id} [put]
func (h *TagHandler) UpdateGroup(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req appcloset.UpdateTagGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.tagService.UpdateGroup(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteGroup godoc
// @Summary      Delete tag group
// @Description  Tags in the group move to Other
// @Tags         tags
// @Produce      json
// @Param        id path string true "Tag group ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcloset.DeleteTagGroupResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tag-groups/{id} [delete]
func (h *TagHandler) DeleteGroup(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.tagService.DeleteGroup(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreateTag godoc
// @Summary      Create tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        request body appcloset.CreateTagRequest true "Tag"
// @Success      201 {object} dto.Response{data=appcloset.TagResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req appcloset.CreateTagRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.tagService.CreateTag(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UpdateTag godoc
// @Summary      Update tag
// @Description  Rename, recolor or move a tag to another group
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        id path string true "Tag ID" format(uuid)
// @Param        request body appcloset.UpdateTagRequest true "Tag"
// @Success      200 {object} dto.Response{data=appcloset.TagResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tags/{id} [put]
func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req appcloset.UpdateTagRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.tagService.UpdateTag(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteTag godoc
// @Summary      Delete tag
// @Description  The tag is removed from every item that carries it
// @Tags         tags
// @Produce      json
// @Param        id path string true "Tag ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcloset.DeleteTagResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.tagService.DeleteTag(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
