package dto

import (
	"time"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
)

type OwnerResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type ProductResponse struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"user_id"`
	Status      string         `json:"product_status"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Quantity    uint64         `json:"quantity"`
	Images      []string       `json:"images"`
	ARImages    []string       `json:"ar_image"`
	Keywords    []string       `json:"keywords"`
	ProductType string         `json:"product_type"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Owner       *OwnerResponse `json:"owner,omitempty"`
}

func NewProductResponse(p domain.ProductWithOwner) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID.Hex(),
		OwnerID:     p.OwnerID.Hex(),
		Status:      string(p.Status),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Images:      p.Images,
		ARImages:    p.ARImages,
		Keywords:    p.Keywords,
		ProductType: p.ProductType,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.Owner != nil {
		resp.Owner = &OwnerResponse{
			ID:        p.Owner.ID.Hex(),
			Username:  p.Owner.Username,
			FirstName: p.Owner.FirstName,
			LastName:  p.Owner.LastName,
			CreatedAt: p.Owner.CreatedAt,
		}
	}

	return resp
}

func NewProductResponses(products []domain.ProductWithOwner) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, NewProductResponse(p))
	}
	return resp
}

type ProductCreatedResponse struct {
	ID string `json:"id"`
}
