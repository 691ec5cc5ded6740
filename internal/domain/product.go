package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStatus string

const (
	ProductStatusPublic  ProductStatus = "public"
	ProductStatusPrivate ProductStatus = "private"
	ProductStatusDeleted ProductStatus = "deleted"
)

// IsListed reports whether a product with this status must be referenced by
// exactly one of its owner's product lists.
func (s ProductStatus) IsListed() bool {
	return s == ProductStatusPublic || s == ProductStatusPrivate
}

// ListField is the user document field holding references to products with this status.
func (s ProductStatus) ListField() string {
	switch s {
	case ProductStatusPublic:
		return UserFieldPublicProducts
	case ProductStatusPrivate:
		return UserFieldPrivateProducts
	default:
		return ""
	}
}

// Opposite returns the other listed status. Unlisted statuses have no opposite.
func (s ProductStatus) Opposite() ProductStatus {
	switch s {
	case ProductStatusPublic:
		return ProductStatusPrivate
	case ProductStatusPrivate:
		return ProductStatusPublic
	default:
		return ""
	}
}

const (
	ProductFieldID          = "_id"
	ProductFieldOwnerID     = "userId"
	ProductFieldStatus      = "productStatus"
	ProductFieldProductType = "productType"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"userId" json:"user_id"`
	Status      ProductStatus      `bson:"productStatus" json:"product_status"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    uint64             `bson:"quantity" json:"quantity"`
	Images      []string           `bson:"images" json:"images"`
	ARImages    []string           `bson:"arImage" json:"ar_image"`
	Keywords    []string           `bson:"keywords" json:"keywords"`
	ProductType string             `bson:"productType" json:"product_type"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}

// Owner is the slice of the owning user projected into product listings.
type Owner struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Username  string             `bson:"username" json:"username"`
	FirstName string             `bson:"firstName" json:"first_name"`
	LastName  string             `bson:"lastName" json:"last_name"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

type ProductWithOwner struct {
	Product `bson:",inline"`
	Owner   *Owner `bson:"owner,omitempty"`
}

// ProductFilter narrows product reads. Zero values do not filter.
type ProductFilter struct {
	IDs         []primitive.ObjectID
	Status      ProductStatus
	ProductType string
	Limit       int
	Page        int

	// MatchIDs makes an empty IDs slice match nothing instead of everything.
	MatchIDs bool
}
