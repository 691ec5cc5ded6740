// Package repositorytest provides an in-memory repository.Repository for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/repository"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type trxKey struct{}

// MemoryRepository keeps products and users in maps. Transactions are
// serialized and roll back to a snapshot when fn fails, which gives the same
// observable outcome as a snapshot transaction that lost a write conflict and
// was retried.
type MemoryRepository struct {
	trxMu sync.Mutex

	mu       sync.Mutex
	products map[primitive.ObjectID]domain.Product
	users    map[primitive.ObjectID]domain.User
	faults   map[string]error
	calls    map[string]int
}

var _ repository.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products: map[primitive.ObjectID]domain.Product{},
		users:    map[primitive.ObjectID]domain.User{},
		faults:   map[string]error{},
		calls:    map[string]int{},
	}
}

// FailOnce makes the next call to the named method return err.
func (r *MemoryRepository) FailOnce(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[method] = err
}

// Calls returns how many times the named method was invoked.
func (r *MemoryRepository) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// SeedUser stores u as is, bypassing every check.
func (r *MemoryRepository) SeedUser(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

// SeedProduct stores p as is, bypassing every check.
func (r *MemoryRepository) SeedProduct(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *MemoryRepository) User(id primitive.ObjectID) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return cloneUser(u), ok
}

func (r *MemoryRepository) Product(id primitive.ObjectID) (domain.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	return p, ok
}

// enter records the call and returns the injected fault, if any. The caller
// must hold r.mu.
func (r *MemoryRepository) enter(method string) error {
	r.calls[method]++
	if err, ok := r.faults[method]; ok {
		delete(r.faults, method)
		return err
	}
	return nil
}

func (r *MemoryRepository) HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(trxKey{}) != nil {
		return fn(ctx)
	}

	r.trxMu.Lock()
	defer r.trxMu.Unlock()

	r.mu.Lock()
	if err := r.enter("HandleTrx"); err != nil {
		r.mu.Unlock()
		return err
	}
	products, users := r.snapshot()
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	err := fn(context.WithValue(ctx, trxKey{}, true))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.mu.Lock()
		r.products, r.users = products, users
		r.mu.Unlock()
		return err
	}

	return nil
}

func (r *MemoryRepository) snapshot() (map[primitive.ObjectID]domain.Product, map[primitive.ObjectID]domain.User) {
	products := make(map[primitive.ObjectID]domain.Product, len(r.products))
	for id, p := range r.products {
		products[id] = p
	}
	users := make(map[primitive.ObjectID]domain.User, len(r.users))
	for id, u := range r.users {
		users[id] = cloneUser(u)
	}
	return products, users
}

func (r *MemoryRepository) AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("AddProduct"); err != nil {
		return
	}

	if data.ID.IsZero() {
		data.ID = primitive.NewObjectID()
	}
	r.products[data.ID] = data
	return data.ID, nil
}

func (r *MemoryRepository) GetProductByID(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("GetProductByID"); err != nil {
		return
	}

	product, ok := r.products[id]
	if !ok {
		return product, errs.ErrProductNotFound
	}
	return product, nil
}

func (r *MemoryRepository) GetProducts(ctx context.Context, filter domain.ProductFilter) (data []domain.ProductWithOwner, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("GetProducts"); err != nil {
		return
	}

	var ids map[primitive.ObjectID]bool
	if len(filter.IDs) > 0 || filter.MatchIDs {
		ids = make(map[primitive.ObjectID]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	for _, p := range r.products {
		if ids != nil && !ids[p.ID] {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ProductType != "" && p.ProductType != filter.ProductType {
			continue
		}

		item := domain.ProductWithOwner{Product: p}
		if u, ok := r.users[p.OwnerID]; ok {
			item.Owner = &domain.Owner{
				ID:        u.ID,
				Username:  u.Username,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				CreatedAt: u.CreatedAt,
			}
		}
		data = append(data, item)
	}

	sort.Slice(data, func(i, j int) bool {
		if !data[i].CreatedAt.Equal(data[j].CreatedAt) {
			return data[i].CreatedAt.After(data[j].CreatedAt)
		}
		return data[i].ID.Hex() < data[j].ID.Hex()
	})

	if filter.Limit > 0 {
		start := 0
		if filter.Page > 1 {
			start = (filter.Page - 1) * filter.Limit
		}
		if start >= len(data) {
			return nil, nil
		}
		end := start + filter.Limit
		if end > len(data) {
			end = len(data)
		}
		data = data[start:end]
	}

	return data, nil
}

func (r *MemoryRepository) UpdateProductDetails(ctx context.Context, data domain.Product) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("UpdateProductDetails"); err != nil {
		return
	}

	p, ok := r.products[data.ID]
	if !ok {
		return errs.ErrProductNotFound
	}
	p.Title = data.Title
	p.Description = data.Description
	p.Price = data.Price
	p.Quantity = data.Quantity
	p.Images = data.Images
	p.ARImages = data.ARImages
	p.Keywords = data.Keywords
	p.ProductType = data.ProductType
	p.UpdatedAt = data.UpdatedAt
	r.products[p.ID] = p
	return nil
}

func (r *MemoryRepository) SetProductStatus(ctx context.Context, id primitive.ObjectID, status domain.ProductStatus) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("SetProductStatus"); err != nil {
		return
	}

	p, ok := r.products[id]
	if !ok {
		return errs.ErrProductNotFound
	}
	p.Status = status
	r.products[id] = p
	return nil
}

func (r *MemoryRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("DeleteProduct"); err != nil {
		return
	}

	if _, ok := r.products[id]; !ok {
		return errs.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (user domain.User, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("GetUserByID"); err != nil {
		return
	}

	user, ok := r.users[id]
	if !ok {
		return user, errs.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryRepository) GetUsers(ctx context.Context) (data []domain.User, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("GetUsers"); err != nil {
		return
	}

	for _, u := range r.users {
		data = append(data, cloneUser(u))
	}
	sort.Slice(data, func(i, j int) bool { return data[i].ID.Hex() < data[j].ID.Hex() })
	return data, nil
}

func (r *MemoryRepository) UpsertUser(ctx context.Context, data domain.User) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("UpsertUser"); err != nil {
		return
	}

	u, ok := r.users[data.ID]
	if !ok {
		u = domain.User{
			ID:              data.ID,
			PublicProducts:  []primitive.ObjectID{},
			PrivateProducts: []primitive.ObjectID{},
			CreatedAt:       data.CreatedAt,
		}
	}
	u.Username = data.Username
	u.FirstName = data.FirstName
	u.LastName = data.LastName
	u.Email = data.Email
	u.Role = data.Role
	r.users[u.ID] = u
	return nil
}

func (r *MemoryRepository) UpdateUserProfile(ctx context.Context, data domain.User) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("UpdateUserProfile"); err != nil {
		return
	}

	u, ok := r.users[data.ID]
	if !ok {
		return errs.ErrUserNotFound
	}
	u.Username = data.Username
	u.FirstName = data.FirstName
	u.LastName = data.LastName
	u.Email = data.Email
	r.users[u.ID] = u
	return nil
}

func (r *MemoryRepository) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("UpdateUserRole"); err != nil {
		return
	}

	u, ok := r.users[id]
	if !ok {
		return errs.ErrUserNotFound
	}
	u.Role = role
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) MoveProductReference(ctx context.Context, userID, productID primitive.ObjectID, from, to domain.ProductStatus) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("MoveProductReference"); err != nil {
		return
	}

	u, ok := r.users[userID]
	if !ok || !u.ListsProduct(from, productID) {
		return errs.ErrNotFound
	}
	u = setList(u, from, without(u.ProductList(from), productID))
	u = setList(u, to, withRef(u.ProductList(to), productID))
	r.users[userID] = u
	return nil
}

func (r *MemoryRepository) PushProductReference(ctx context.Context, userID, productID primitive.ObjectID, status domain.ProductStatus) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("PushProductReference"); err != nil {
		return
	}

	u, ok := r.users[userID]
	if !ok {
		return errs.ErrUserNotFound
	}
	r.users[userID] = setList(u, status, withRef(u.ProductList(status), productID))
	return nil
}

func (r *MemoryRepository) PullProductReference(ctx context.Context, userID, productID primitive.ObjectID, statuses ...domain.ProductStatus) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err = r.enter("PullProductReference"); err != nil {
		return
	}

	u, ok := r.users[userID]
	if !ok {
		return errs.ErrUserNotFound
	}
	for _, status := range statuses {
		u = setList(u, status, without(u.ProductList(status), productID))
	}
	r.users[userID] = u
	return nil
}

func setList(u domain.User, status domain.ProductStatus, list []primitive.ObjectID) domain.User {
	switch status {
	case domain.ProductStatusPublic:
		u.PublicProducts = list
	case domain.ProductStatusPrivate:
		u.PrivateProducts = list
	}
	return u
}

func without(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(list))
	for _, ref := range list {
		if ref != id {
			out = append(out, ref)
		}
	}
	return out
}

func withRef(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, ref := range list {
		if ref == id {
			return list
		}
	}
	out := make([]primitive.ObjectID, 0, len(list)+1)
	out = append(out, list...)
	return append(out, id)
}

func cloneUser(u domain.User) domain.User {
	u.PublicProducts = append([]primitive.ObjectID(nil), u.PublicProducts...)
	u.PrivateProducts = append([]primitive.ObjectID(nil), u.PrivateProducts...)
	return u
}
