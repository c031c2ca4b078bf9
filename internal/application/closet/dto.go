package closet

import (
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/google/uuid"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=50"`
	Group     string `json:"group" binding:"max=50"`
	Type      string `json:"type" binding:"required,category_type"`
	SortOrder int    `json:"sort_order"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=50"`
	Group     string `json:"group" binding:"max=50"`
	Type      string `json:"type" binding:"required,category_type"`
	SortOrder int    `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	Type      string    `json:"type"`
	SortOrder int       `json:"sort_order"`
	Reserved  bool      `json:"reserved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// DeleteCategoryResponse reports how many items moved to Other
type DeleteCategoryResponse struct {
	ReassignedItems int64 `json:"reassigned_items"`
}

// ToCategoryResponse converts a domain category to a response
func ToCategoryResponse(c *closet.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Group:     c.Group,
		Type:      string(c.Type),
		SortOrder: c.SortOrder,
		Reserved:  c.IsReserved(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// CreateTagGroupRequest represents a request to create a tag group
type CreateTagGroupRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=50"`
	SortOrder int    `json:"sort_order"`
}

// UpdateTagGroupRequest represents a request to update a tag group
type UpdateTagGroupRequest struct {
	Name      string `json:"name" binding:"required,notblank,max=50"`
	SortOrder int    `json:"sort_order"`
}

// CreateTagRequest represents a request to create a tag
type CreateTagRequest struct {
	GroupID uuid.UUID `json:"group_id" binding:"required"`
	Name    string    `json:"name" binding:"required,notblank,max=50"`
	Color   string    `json:"color" binding:"omitempty,hexcolor"`
}

// UpdateTagRequest represents a request to update a tag.
// A nil GroupID keeps the tag in its current group.
type UpdateTagRequest struct {
	GroupID *uuid.UUID `json:"group_id"`
	Name    string     `json:"name" binding:"required,notblank,max=50"`
	Color   string     `json:"color" binding:"omitempty,hexcolor"`
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagGroupResponse represents a tag group with its tags
type TagGroupResponse struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	SortOrder int           `json:"sort_order"`
	Reserved  bool          `json:"reserved"`
	Tags      []TagResponse `json:"tags"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DeleteTagGroupResponse reports how many tags moved to Other
type DeleteTagGroupResponse struct {
	ReassignedTags int64 `json:"reassigned_tags"`
}

// DeleteTagResponse reports how many items lost the tag
type DeleteTagResponse struct {
	UpdatedItems int64 `json:"updated_items"`
}

// ToTagResponse converts a domain tag to a response
func ToTagResponse(t *closet.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		GroupID:   t.GroupID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToTagGroupResponse converts a domain tag group to a response
func ToTagGroupResponse(g *closet.TagGroup) TagGroupResponse {
	tags := make([]TagResponse, len(g.Tags))
	for i := range g.Tags {
		tags[i] = ToTagResponse(&g.Tags[i])
	}
	return TagGroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		SortOrder: g.SortOrder,
		Reserved:  g.IsReserved(),
		Tags:      tags,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// UploadItemInput carries a decoded multipart upload
type UploadItemInput struct {
	ClientID         uuid.UUID
	ActorID          uuid.UUID
	CategoryID       uuid.UUID
	Name             string
	TagIDs           []uuid.UUID
	RemoveBackground bool
	Filename         string
	Data             []byte
}

// UpdateItemRequest represents a request to update an item.
// Nil fields are left unchanged.
type UpdateItemRequest struct {
	Name       *string      `json:"name" binding:"omitempty,max=100"`
	CategoryID *uuid.UUID   `json:"category_id"`
	TagIDs     *[]uuid.UUID `json:"tag_ids"`
}

// ItemListFilter represents query parameters for listing items
type ItemListFilter struct {
	CategoryID string   `form:"category_id" binding:"omitempty,uuid"`
	TagIDs     []string `form:"tag_ids" binding:"omitempty,dive,uuid"`
	Search     string   `form:"search"`
	Page       int      `form:"page" binding:"omitempty,min=1"`
	PageSize   int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string   `form:"order_by" binding:"omitempty,oneof=created_at updated_at name"`
	OrderDir   string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents a closet item in API responses
type ItemResponse struct {
	ID                uuid.UUID   `json:"id"`
	ClientID          uuid.UUID   `json:"client_id"`
	CategoryID        uuid.UUID   `json:"category_id"`
	Name              string      `json:"name"`
	ContentType       string      `json:"content_type"`
	Size              int64       `json:"size"`
	Width             int         `json:"width"`
	Height            int         `json:"height"`
	TagIDs            []uuid.UUID `json:"tag_ids"`
	BackgroundRemoved bool        `json:"background_removed"`
	FullURL           string      `json:"full_url,omitempty"`
	SmallURL          string      `json:"small_url,omitempty"`
	URLExpiresAt      *time.Time  `json:"url_expires_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	Version           int         `json:"version"`
}

// ToItemResponse converts a domain item to a response without URLs
func ToItemResponse(i *closet.Item) ItemResponse {
	tagIDs := i.TagIDs
	if tagIDs == nil {
		tagIDs = []uuid.UUID{}
	}
	return ItemResponse{
		ID:                i.ID,
		ClientID:          i.ClientID,
		CategoryID:        i.CategoryID,
		Name:              i.Name,
		ContentType:       i.ContentType,
		Size:              i.Size,
		Width:             i.Width,
		Height:            i.Height,
		TagIDs:            tagIDs,
		BackgroundRemoved: i.BackgroundRemoved,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
		Version:           i.Version,
	}
}

// EnrichWithURLs sets the presigned download URLs
func (r *ItemResponse) EnrichWithURLs(fullURL, smallURL string, expiresAt time.Time) {
	r.FullURL = fullURL
	r.SmallURL = smallURL
	r.URLExpiresAt = &expiresAt
}

// CategoryCountResponse is one row of the closet summary
type CategoryCountResponse struct {
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Count        int64     `json:"count"`
}

// ClosetSummaryResponse counts a client's items per category
type ClosetSummaryResponse struct {
	ClientID   uuid.UUID               `json:"client_id"`
	Total      int64                   `json:"total"`
	Categories []CategoryCountResponse `json:"categories"`
}
