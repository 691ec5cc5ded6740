package repository

import (
	"context"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductRepository interface {
	AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error)
	GetProductByID(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error)
	GetProducts(ctx context.Context, filter domain.ProductFilter) (data []domain.ProductWithOwner, err error)
	UpdateProductDetails(ctx context.Context, data domain.Product) (err error)
	SetProductStatus(ctx context.Context, id primitive.ObjectID, status domain.ProductStatus) (err error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) (err error)
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (user domain.User, err error)
	GetUsers(ctx context.Context) (data []domain.User, err error)
	UpsertUser(ctx context.Context, data domain.User) (err error)
	UpdateUserProfile(ctx context.Context, data domain.User) (err error)
	UpdateUserRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (err error)

	// MoveProductReference moves productID from the owner's from-list to the
	// to-list. It only matches while productID is in the from-list and returns
	// errs.ErrNotFound otherwise.
	MoveProductReference(ctx context.Context, userID, productID primitive.ObjectID, from, to domain.ProductStatus) (err error)
	PushProductReference(ctx context.Context, userID, productID primitive.ObjectID, status domain.ProductStatus) (err error)
	PullProductReference(ctx context.Context, userID, productID primitive.ObjectID, statuses ...domain.ProductStatus) (err error)
}

type Repository interface {
	ProductRepository
	UserRepository

	// HandleTrx runs fn in a multi-document transaction. Every repository call
	// made with the ctx passed to fn joins the transaction; a non-nil return
	// from fn aborts it.
	HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error
}
