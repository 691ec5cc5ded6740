package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// NormalizeRole maps unknown role names to the least privileged role.
func NormalizeRole(role string) Role {
	switch Role(role) {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return Role(role)
	default:
		return RoleCustomer
	}
}

const (
	UserFieldPublicProducts  = "publicProducts"
	UserFieldPrivateProducts = "privateProducts"
)

type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username        string               `bson:"username" json:"username"`
	FirstName       string               `bson:"firstName" json:"first_name"`
	LastName        string               `bson:"lastName" json:"last_name"`
	Email           string               `bson:"email" json:"email"`
	Role            Role                 `bson:"role" json:"role"`
	PublicProducts  []primitive.ObjectID `bson:"publicProducts" json:"public_products"`
	PrivateProducts []primitive.ObjectID `bson:"privateProducts" json:"private_products"`
	CreatedAt       time.Time            `bson:"createdAt" json:"created_at"`
}

// ProductList returns the list that references products with the given status.
func (u User) ProductList(status ProductStatus) []primitive.ObjectID {
	switch status {
	case ProductStatusPublic:
		return u.PublicProducts
	case ProductStatusPrivate:
		return u.PrivateProducts
	default:
		return nil
	}
}

// ListsProduct reports whether id is referenced by the list matching status.
func (u User) ListsProduct(status ProductStatus, id primitive.ObjectID) bool {
	for _, ref := range u.ProductList(status) {
		if ref == id {
			return true
		}
	}
	return false
}
