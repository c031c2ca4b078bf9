package shopping

import (
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShoppingItemRequest creates or replaces a shopping list entry
type ShoppingItemRequest struct {
	Name      string           `json:"name" binding:"required,notblank,max=200"`
	Link      string           `json:"link" binding:"omitempty,url,max=2000"`
	ImageLink string           `json:"image_link" binding:"omitempty,url,max=2000"`
	Notes     string           `json:"notes" binding:"max=2000"`
	Price     *decimal.Decimal `json:"price" swaggertype:"string" example:"49.99"`
}

func (r ShoppingItemRequest) details() shopping.Details {
	return shopping.Details{
		Name:      r.Name,
		Link:      r.Link,
		ImageLink: r.ImageLink,
		Notes:     r.Notes,
		Price:     r.Price,
	}
}

// SetPurchasedRequest marks an entry as bought or not
type SetPurchasedRequest struct {
	Purchased *bool `json:"purchased" binding:"required"`
}

// ShoppingListFilter represents query parameters for listing shopping items
type ShoppingListFilter struct {
	Purchased *bool  `form:"purchased"`
	Search    string `form:"search" binding:"omitempty,max=100"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by" binding:"omitempty,oneof=created_at updated_at name price purchased"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ShoppingItemResponse represents a shopping list entry in API responses
type ShoppingItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ClientID  uuid.UUID        `json:"client_id"`
	Name      string           `json:"name"`
	Link      string           `json:"link,omitempty"`
	ImageLink string           `json:"image_link,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	Purchased bool             `json:"purchased"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Version   int              `json:"version"`
}

// ToShoppingItemResponse converts a domain shopping item to a response
func ToShoppingItemResponse(i *shopping.Item) ShoppingItemResponse {
	return ShoppingItemResponse{
		ID:        i.ID,
		ClientID:  i.ClientID,
		Name:      i.Name,
		Link:      i.Link,
		ImageLink: i.ImageLink,
		Notes:     i.Notes,
		Price:     i.Price,
		Purchased: i.Purchased,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
		Version:   i.Version,
	}
}
