package dto

type ProductRequest struct {
	ID          string   `json:"-"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Quantity    *uint64  `json:"quantity" validate:"omitempty,gte=1"`
	Images      []string `json:"images" validate:"dive,url"`
	ARImages    []string `json:"arImage" validate:"dive,url"`
	Keywords    []string `json:"keywords" validate:"dive,required"`
	ProductType string   `json:"productType" validate:"required"`

	// Visibility selects the initial list on create and requests a transition on update.
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private"`
}
