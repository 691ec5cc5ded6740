package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/dto"
	circuitbreaker "github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/circuit-breaker"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/message-queue/kafka"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/repository/repositorytest"
	pkgdto "github.com/ahmadrazza2001/backend-trynbuy/pkg/dto"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []dto.KafkaMessage
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		types = append(types, m.EventType)
	}
	return types
}

// cancellingRepository cancels the request right after the named write
// succeeds, as a client hanging up mid-transaction would.
type cancellingRepository struct {
	*repositorytest.MemoryRepository
	cancel context.CancelFunc
	after  string
}

func (r *cancellingRepository) MoveProductReference(ctx context.Context, userID, productID primitive.ObjectID, from, to domain.ProductStatus) error {
	err := r.MemoryRepository.MoveProductReference(ctx, userID, productID, from, to)
	if err == nil && r.after == "MoveProductReference" {
		r.cancel()
	}
	return err
}

func (r *cancellingRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	err := r.MemoryRepository.DeleteProduct(ctx, id)
	if err == nil && r.after == "DeleteProduct" {
		r.cancel()
	}
	return err
}

type downWriter struct{}

func (downWriter) WriteMessages(msgs ...kafkago.Message) (int, error) {
	return 0, errors.New("dial tcp: connection refused")
}

// hangupPublisher simulates the client leaving while the event is in flight.
type hangupPublisher struct {
	cancel context.CancelFunc
	err    error
}

func (p *hangupPublisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	p.cancel()
	<-ctx.Done()
	p.err = ctx.Err()
	return p.err
}

type ProductServiceSuite struct {
	suite.Suite
	ctx       context.Context
	repo      *repositorytest.MemoryRepository
	publisher *recordingPublisher
	svc       ProductService
}

func (s *ProductServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = repositorytest.NewMemoryRepository()
	s.publisher = &recordingPublisher{}
	s.svc = CreateProductService(s.repo, s.publisher, WithClock(func() time.Time { return fixedNow }))
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceSuite))
}

func (s *ProductServiceSuite) seedUser(username string, role domain.Role) domain.User {
	u := domain.User{
		ID:              primitive.NewObjectID(),
		Username:        username,
		FirstName:       "First " + username,
		LastName:        "Last " + username,
		Role:            role,
		PublicProducts:  []primitive.ObjectID{},
		PrivateProducts: []primitive.ObjectID{},
		CreatedAt:       fixedNow,
	}
	s.repo.SeedUser(u)
	return u
}

func (s *ProductServiceSuite) seedProduct(owner domain.User, status domain.ProductStatus, productType string) domain.Product {
	p := domain.Product{
		ID:          primitive.NewObjectID(),
		OwnerID:     owner.ID,
		Status:      status,
		Title:       "Lamp",
		Description: "A desk lamp",
		Price:       10,
		Quantity:    1,
		ProductType: productType,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	s.repo.SeedProduct(p)

	u, _ := s.repo.User(owner.ID)
	switch status {
	case domain.ProductStatusPublic:
		u.PublicProducts = append(u.PublicProducts, p.ID)
	case domain.ProductStatusPrivate:
		u.PrivateProducts = append(u.PrivateProducts, p.ID)
	}
	s.repo.SeedUser(u)

	return p
}

// requireConsistent checks that the product status and the owner's lists agree.
func (s *ProductServiceSuite) requireConsistent(productID primitive.ObjectID) {
	p, ok := s.repo.Product(productID)
	s.Require().True(ok)
	u, ok := s.repo.User(p.OwnerID)
	s.Require().True(ok)

	s.Equal(p.Status == domain.ProductStatusPublic, u.ListsProduct(domain.ProductStatusPublic, productID), "public list")
	s.Equal(p.Status == domain.ProductStatusPrivate, u.ListsProduct(domain.ProductStatusPrivate, productID), "private list")
}

func productRequest() dto.ProductRequest {
	return dto.ProductRequest{
		Title:       "Sneakers",
		Description: "White sneakers",
		Price:       49.5,
		Images:      []string{"https://cdn.example.com/a.png"},
		Keywords:    []string{"shoes"},
		ProductType: "shoes",
	}
}

func (s *ProductServiceSuite) TestAddProduct_DefaultsToPublic() {
	owner := s.seedUser("alice", domain.RoleVendor)

	id, err := s.svc.AddProduct(s.ctx, owner.ID.Hex(), productRequest())
	s.Require().NoError(err)

	productID, err := primitive.ObjectIDFromHex(id)
	s.Require().NoError(err)

	p, ok := s.repo.Product(productID)
	s.Require().True(ok)
	s.Equal(domain.ProductStatusPublic, p.Status)
	s.Equal(uint64(1), p.Quantity)
	s.Equal(fixedNow, p.CreatedAt)
	s.Equal([]string{}, p.ARImages)
	s.requireConsistent(productID)
	s.Equal([]string{dto.EventProductCreated}, s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestAddProduct_Private() {
	owner := s.seedUser("alice", domain.RoleVendor)
	req := productRequest()
	req.Visibility = "private"
	quantity := uint64(4)
	req.Quantity = &quantity

	id, err := s.svc.AddProduct(s.ctx, owner.ID.Hex(), req)
	s.Require().NoError(err)

	productID, _ := primitive.ObjectIDFromHex(id)
	p, _ := s.repo.Product(productID)
	s.Equal(domain.ProductStatusPrivate, p.Status)
	s.Equal(uint64(4), p.Quantity)
	s.requireConsistent(productID)
}

func (s *ProductServiceSuite) TestAddProduct_UnknownOwner() {
	_, err := s.svc.AddProduct(s.ctx, primitive.NewObjectID().Hex(), productRequest())
	s.ErrorIs(err, errs.ErrUserNotFound)

	products, err := s.repo.GetProducts(s.ctx, domain.ProductFilter{})
	s.Require().NoError(err)
	s.Empty(products)
	s.Empty(s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestAddProduct_LinkFailureLeavesNoProduct() {
	owner := s.seedUser("alice", domain.RoleVendor)
	s.repo.FailOnce("PushProductReference", errors.New("connection reset"))

	_, err := s.svc.AddProduct(s.ctx, owner.ID.Hex(), productRequest())
	s.Error(err)

	products, err := s.repo.GetProducts(s.ctx, domain.ProductFilter{})
	s.Require().NoError(err)
	s.Empty(products)
}

func (s *ProductServiceSuite) TestAddProduct_InvalidCaller() {
	_, err := s.svc.AddProduct(s.ctx, "not-an-id", productRequest())
	s.ErrorIs(err, errs.ErrNotLoggedIn)
}

func (s *ProductServiceSuite) TestMakePrivate_Commits() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	result := s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex())
	s.Require().NoError(result.Err())
	s.True(result.IsCommitted())
	s.Equal(domain.ProductStatusPublic, result.From)
	s.Equal(domain.ProductStatusPrivate, result.To)

	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPrivate, got.Status)
	s.requireConsistent(p.ID)
	s.Equal([]string{dto.EventProductVisibilityChanged}, s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestMakePrivate_AlreadyPrivate() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	s.Require().NoError(s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex()).Err())
	before, _ := s.repo.User(owner.ID)

	result := s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex())
	s.False(result.IsCommitted())
	s.ErrorIs(result.Err(), errs.ErrNotInPublicProducts)
	s.Equal(errs.ErrStatusNotFound, errs.GetErrorStatusCode(result.Err()))

	after, _ := s.repo.User(owner.ID)
	s.Equal(before, after)
	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPrivate, got.Status)
}

func (s *ProductServiceSuite) TestMakePublic_NotInPrivateList() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	result := s.svc.MakePublic(s.ctx, owner.ID.Hex(), p.ID.Hex())
	s.ErrorIs(result.Err(), errs.ErrNotInPrivateProducts)
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestVisibilityRoundTrip() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	before, _ := s.repo.User(owner.ID)

	s.Require().NoError(s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex()).Err())
	s.Require().NoError(s.svc.MakePublic(s.ctx, owner.ID.Hex(), p.ID.Hex()).Err())

	after, _ := s.repo.User(owner.ID)
	s.ElementsMatch(before.PublicProducts, after.PublicProducts)
	s.ElementsMatch(before.PrivateProducts, after.PrivateProducts)
	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPublic, got.Status)
}

func (s *ProductServiceSuite) TestMakePrivate_FaultRollsBack() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	s.repo.FailOnce("SetProductStatus", errors.New("primary stepped down"))

	result := s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex())
	s.False(result.IsCommitted())
	s.Error(result.Err())

	u, _ := s.repo.User(owner.ID)
	s.True(u.ListsProduct(domain.ProductStatusPublic, p.ID))
	s.False(u.ListsProduct(domain.ProductStatusPrivate, p.ID))
	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPublic, got.Status)
	s.Empty(s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestMakePrivate_ConflictSurfacesAsConflict() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	s.repo.FailOnce("HandleTrx", errs.ErrConflict)

	result := s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex())
	s.ErrorIs(result.Err(), errs.ErrConflict)
	s.Equal(errs.ErrStatusConflict, errs.GetErrorStatusCode(result.Err()))
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestMakePrivate_Concurrent() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	results := make([]domain.TransitionResult, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex())
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, r := range results {
		if r.IsCommitted() {
			committed++
			continue
		}
		s.ErrorIs(r.Err(), errs.ErrNotInPublicProducts)
	}
	s.Equal(1, committed)
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestMakePrivate_MembershipWithoutOwnershipIsForbidden() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	intruder := s.seedUser("mallory", domain.RoleVendor)
	intruder.PublicProducts = []primitive.ObjectID{p.ID}
	s.repo.SeedUser(intruder)

	result := s.svc.MakePrivate(s.ctx, intruder.ID.Hex(), p.ID.Hex())
	s.ErrorIs(result.Err(), errs.ErrNotProductOwner)
	s.Equal(errs.ErrStatusNoPermission, errs.GetErrorStatusCode(result.Err()))

	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPublic, got.Status)
	u, _ := s.repo.User(intruder.ID)
	s.True(u.ListsProduct(domain.ProductStatusPublic, p.ID))
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestMakePrivate_InvalidIDs() {
	owner := s.seedUser("alice", domain.RoleVendor)

	s.ErrorIs(s.svc.MakePrivate(s.ctx, owner.ID.Hex(), "xyz").Err(), errs.ErrInvalidID)
	s.ErrorIs(s.svc.MakePrivate(s.ctx, "", primitive.NewObjectID().Hex()).Err(), errs.ErrNotLoggedIn)
	s.ErrorIs(s.svc.MakePrivate(s.ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()).Err(), errs.ErrUserNotFound)
}

func (s *ProductServiceSuite) TestMakePrivate_PublishFailureStillCommits() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	s.publisher.err = errors.New("broker down")

	result := s.svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex())
	s.True(result.IsCommitted())
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestCreateThenListAndSearch() {
	owner := s.seedUser("alice", domain.RoleVendor)

	id, err := s.svc.AddProduct(s.ctx, owner.ID.Hex(), productRequest())
	s.Require().NoError(err)

	mine, err := s.svc.GetMyPublicProducts(s.ctx, owner.ID.Hex())
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(id, mine[0].ID)
	s.Require().NotNil(mine[0].Owner)
	s.Equal("alice", mine[0].Owner.Username)

	found, err := s.svc.SearchProducts(s.ctx, pkgdto.Filter{ProductType: "shoes"})
	s.Require().NoError(err)
	s.Len(found, 1)

	s.Require().NoError(s.svc.MakePrivate(s.ctx, owner.ID.Hex(), id).Err())

	_, err = s.svc.SearchProducts(s.ctx, pkgdto.Filter{ProductType: "shoes"})
	s.ErrorIs(err, errs.ErrProductsNotFound)

	_, err = s.svc.GetMyPublicProducts(s.ctx, owner.ID.Hex())
	s.ErrorIs(err, errs.ErrNoPublicProducts)

	private, err := s.svc.GetMyPrivateProducts(s.ctx, owner.ID.Hex())
	s.Require().NoError(err)
	s.Require().Len(private, 1)
	s.Equal(string(domain.ProductStatusPrivate), private[0].Status)
}

func (s *ProductServiceSuite) TestSearchProducts_RequiresType() {
	_, err := s.svc.SearchProducts(s.ctx, pkgdto.Filter{})
	s.ErrorIs(err, errs.ErrClient)
}

func (s *ProductServiceSuite) TestGetMyProducts_Errors() {
	_, err := s.svc.GetMyPrivateProducts(s.ctx, primitive.NewObjectID().Hex())
	s.ErrorIs(err, errs.ErrUserNotFound)

	owner := s.seedUser("alice", domain.RoleVendor)
	_, err = s.svc.GetMyPrivateProducts(s.ctx, owner.ID.Hex())
	s.ErrorIs(err, errs.ErrNoPrivateProducts)

	// a dangling reference resolves to nothing
	owner.PrivateProducts = []primitive.ObjectID{primitive.NewObjectID()}
	s.repo.SeedUser(owner)
	_, err = s.svc.GetMyPrivateProducts(s.ctx, owner.ID.Hex())
	s.ErrorIs(err, errs.ErrNoPrivateProducts)
}

func (s *ProductServiceSuite) TestGetAllProducts() {
	_, err := s.svc.GetAllProducts(s.ctx, pkgdto.Filter{})
	s.ErrorIs(err, errs.ErrProductsNotFound)

	owner := s.seedUser("alice", domain.RoleVendor)
	s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	s.seedProduct(owner, domain.ProductStatusPrivate, "hats")
	s.seedProduct(owner, domain.ProductStatusPublic, "bags")

	all, err := s.svc.GetAllProducts(s.ctx, pkgdto.Filter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	page, err := s.svc.GetAllProducts(s.ctx, pkgdto.Filter{Limit: 2, Page: 2})
	s.Require().NoError(err)
	s.Len(page, 1)
}

func (s *ProductServiceSuite) TestUpdateProduct() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	req := productRequest()
	req.ID = p.ID.Hex()
	req.Title = "Red sneakers"
	s.Require().NoError(s.svc.UpdateProduct(s.ctx, owner.ID.Hex(), req))

	got, _ := s.repo.Product(p.ID)
	s.Equal("Red sneakers", got.Title)
	s.Equal(uint64(1), got.Quantity)
	s.Equal(domain.ProductStatusPublic, got.Status)
	s.Equal([]string{dto.EventProductUpdated}, s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestUpdateProduct_VisibilityGoesThroughTransition() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	req := productRequest()
	req.ID = p.ID.Hex()
	req.Visibility = "private"
	s.Require().NoError(s.svc.UpdateProduct(s.ctx, owner.ID.Hex(), req))

	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPrivate, got.Status)
	s.requireConsistent(p.ID)
	s.Equal(1, s.repo.Calls("MoveProductReference"))
	s.Equal([]string{dto.EventProductUpdated, dto.EventProductVisibilityChanged}, s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestUpdateProduct_VisibilityFailureKeepsDetails() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	s.repo.FailOnce("MoveProductReference", errors.New("network"))

	req := productRequest()
	req.ID = p.ID.Hex()
	req.Title = "Changed"
	req.Visibility = "private"
	s.Error(s.svc.UpdateProduct(s.ctx, owner.ID.Hex(), req))

	got, _ := s.repo.Product(p.ID)
	s.Equal("Lamp", got.Title)
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestUpdateProduct_Errors() {
	owner := s.seedUser("alice", domain.RoleVendor)
	other := s.seedUser("bob", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	req := productRequest()
	req.ID = p.ID.Hex()
	s.ErrorIs(s.svc.UpdateProduct(s.ctx, other.ID.Hex(), req), errs.ErrNotProductOwner)

	req.ID = primitive.NewObjectID().Hex()
	s.ErrorIs(s.svc.UpdateProduct(s.ctx, owner.ID.Hex(), req), errs.ErrProductNotFound)

	req.ID = "bogus"
	s.ErrorIs(s.svc.UpdateProduct(s.ctx, owner.ID.Hex(), req), errs.ErrInvalidID)
}

func (s *ProductServiceSuite) TestDeleteProduct() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPrivate, "shoes")

	s.Require().NoError(s.svc.DeleteProduct(s.ctx, owner.ID.Hex(), p.ID.Hex()))

	_, ok := s.repo.Product(p.ID)
	s.False(ok)
	u, _ := s.repo.User(owner.ID)
	s.False(u.ListsProduct(domain.ProductStatusPrivate, p.ID))
	s.False(u.ListsProduct(domain.ProductStatusPublic, p.ID))
	s.Equal([]string{dto.EventProductDeleted}, s.publisher.eventTypes())

	s.ErrorIs(s.svc.DeleteProduct(s.ctx, owner.ID.Hex(), p.ID.Hex()), errs.ErrProductNotFound)
}

func (s *ProductServiceSuite) TestDeleteProduct_NotOwner() {
	owner := s.seedUser("alice", domain.RoleVendor)
	other := s.seedUser("bob", domain.RoleAdmin)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	s.ErrorIs(s.svc.DeleteProduct(s.ctx, other.ID.Hex(), p.ID.Hex()), errs.ErrNotProductOwner)

	_, ok := s.repo.Product(p.ID)
	s.True(ok)
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestDeleteProduct_PullFailureKeepsProduct() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	s.repo.FailOnce("PullProductReference", errors.New("timeout"))

	s.Error(s.svc.DeleteProduct(s.ctx, owner.ID.Hex(), p.ID.Hex()))

	_, ok := s.repo.Product(p.ID)
	s.True(ok)
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestMakePrivate_CancelledBeforeCommitRollsBack() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	repo := &cancellingRepository{MemoryRepository: s.repo, cancel: cancel, after: "MoveProductReference"}
	svc := CreateProductService(repo, s.publisher)

	result := svc.MakePrivate(ctx, owner.ID.Hex(), p.ID.Hex())
	s.False(result.IsCommitted())
	s.ErrorIs(result.Err(), context.Canceled)

	s.requireConsistent(p.ID)
	u, _ := s.repo.User(owner.ID)
	s.True(u.ListsProduct(domain.ProductStatusPublic, p.ID))
	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPublic, got.Status)
	s.Empty(s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestDeleteProduct_CancelledBeforeCommitRollsBack() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	repo := &cancellingRepository{MemoryRepository: s.repo, cancel: cancel, after: "DeleteProduct"}
	svc := CreateProductService(repo, s.publisher)

	s.ErrorIs(svc.DeleteProduct(ctx, owner.ID.Hex(), p.ID.Hex()), context.Canceled)

	_, ok := s.repo.Product(p.ID)
	s.True(ok)
	s.requireConsistent(p.ID)
	s.Empty(s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestDeleteProduct_OwnerNotSynced() {
	ghost := primitive.NewObjectID()
	p := domain.Product{
		ID:          primitive.NewObjectID(),
		OwnerID:     ghost,
		Status:      domain.ProductStatusPublic,
		Title:       "Lamp",
		ProductType: "shoes",
		CreatedAt:   fixedNow,
	}
	s.repo.SeedProduct(p)

	s.Require().NoError(s.svc.DeleteProduct(s.ctx, ghost.Hex(), p.ID.Hex()))

	_, ok := s.repo.Product(p.ID)
	s.False(ok)
	s.Equal([]string{dto.EventProductDeleted}, s.publisher.eventTypes())
}

func (s *ProductServiceSuite) TestMakePrivate_BrokerDownDoesNotHoldRequest() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	publisher := kafka.CreatePublisher(downWriter{}, circuitbreaker.CreateCircuitBreaker("product-events-down"))
	svc := CreateProductService(s.repo, publisher, WithPublishTimeout(50*time.Millisecond))

	start := time.Now()
	result := svc.MakePrivate(s.ctx, owner.ID.Hex(), p.ID.Hex())
	s.True(result.IsCommitted())
	s.Less(time.Since(start), time.Second)
	s.requireConsistent(p.ID)
}

func (s *ProductServiceSuite) TestPublish_StopsWhenRequestGoesAway() {
	owner := s.seedUser("alice", domain.RoleVendor)
	p := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	publisher := &hangupPublisher{cancel: cancel}
	svc := CreateProductService(s.repo, publisher, WithPublishTimeout(time.Minute))

	result := svc.MakePrivate(ctx, owner.ID.Hex(), p.ID.Hex())
	s.True(result.IsCommitted())
	s.ErrorIs(publisher.err, context.Canceled)

	got, _ := s.repo.Product(p.ID)
	s.Equal(domain.ProductStatusPrivate, got.Status)
}
