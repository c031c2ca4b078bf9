package outfit

import (
	"encoding/json"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/google/uuid"
)

// CreateOutfitRequest represents a request to save a new outfit.
// Preview is a base64 data URL of the rendered canvas.
type CreateOutfitRequest struct {
	Name    string          `json:"name" binding:"max=100"`
	Stage   json.RawMessage `json:"stage" binding:"required" swaggertype:"object"`
	ItemIDs []uuid.UUID     `json:"item_ids" binding:"max=200"`
	Preview string          `json:"preview" binding:"required"`
}

// UpdateOutfitRequest replaces an outfit. An empty Preview keeps the current one.
type UpdateOutfitRequest struct {
	Name    string          `json:"name" binding:"max=100"`
	Stage   json.RawMessage `json:"stage" binding:"required" swaggertype:"object"`
	ItemIDs []uuid.UUID     `json:"item_ids" binding:"max=200"`
	Preview string          `json:"preview"`
}

// OutfitListFilter represents query parameters for listing outfits
type OutfitListFilter struct {
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at name"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OutfitResponse represents an outfit in API responses
type OutfitResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ClientID            uuid.UUID       `json:"client_id"`
	Name                string          `json:"name"`
	Stage               json.RawMessage `json:"stage" swaggertype:"object"`
	ItemIDs             []uuid.UUID     `json:"item_ids"`
	PreviewURL          string          `json:"preview_url,omitempty"`
	PreviewURLExpiresAt *time.Time      `json:"preview_url_expires_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Version             int             `json:"version"`
}

// ToOutfitResponse converts a domain outfit to a response without the preview URL
func ToOutfitResponse(o *outfit.Outfit) OutfitResponse {
	itemIDs := o.ItemIDs
	if itemIDs == nil {
		itemIDs = []uuid.UUID{}
	}
	return OutfitResponse{
		ID:        o.ID,
		ClientID:  o.ClientID,
		Name:      o.Name,
		Stage:     o.Stage,
		ItemIDs:   itemIDs,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Version:   o.Version,
	}
}
