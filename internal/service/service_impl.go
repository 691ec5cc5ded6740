package service

import (
	"context"
	"errors"
	"time"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/dto"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/metrics"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/tracing"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/repository"
	pkgdto "github.com/ahmadrazza2001/backend-trynbuy/pkg/dto"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultPublishTimeout = 2 * time.Second

type ProductServiceImpl struct {
	repo           repository.Repository
	publisher      EventPublisher
	tracer         trace.Tracer
	now            func() time.Time
	publishTimeout time.Duration
}

type Option func(*ProductServiceImpl)

// WithClock replaces time.Now for product timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ProductServiceImpl) {
		s.now = now
	}
}

// WithPublishTimeout bounds how long a committed request waits on the broker.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(s *ProductServiceImpl) {
		s.publishTimeout = timeout
	}
}

func CreateProductService(repo repository.Repository, publisher EventPublisher, opts ...Option) ProductService {
	s := &ProductServiceImpl{
		repo:           repo,
		publisher:      publisher,
		tracer:         otel.Tracer(tracing.ServiceName),
		now:            time.Now,
		publishTimeout: defaultPublishTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *ProductServiceImpl) AddProduct(ctx context.Context, callerID string, data dto.ProductRequest) (id string, err error) {
	ownerID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return "", errs.ErrNotLoggedIn
	}

	status := domain.ProductStatusPublic
	if domain.ProductStatus(data.Visibility) == domain.ProductStatusPrivate {
		status = domain.ProductStatusPrivate
	}

	quantity := uint64(1)
	if data.Quantity != nil {
		quantity = *data.Quantity
	}

	now := s.now().UTC()
	product := domain.Product{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Status:      status,
		Title:       data.Title,
		Description: data.Description,
		Price:       data.Price,
		Quantity:    quantity,
		Images:      nonNil(data.Images),
		ARImages:    nonNil(data.ARImages),
		Keywords:    nonNil(data.Keywords),
		ProductType: data.ProductType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.HandleTrx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
			return err
		}

		if _, err := s.repo.AddProduct(ctx, product); err != nil {
			return err
		}

		return s.repo.PushProductReference(ctx, ownerID, product.ID, status)
	})
	if err != nil {
		return "", err
	}

	s.publish(ctx, product.ID.Hex(), dto.EventProductCreated, productEvent(product))

	return product.ID.Hex(), nil
}

// UpdateProduct overwrites the descriptive fields of a product owned by the
// caller. A visibility different from the current status is applied through
// the same list move the transition endpoints use, in the same transaction.
func (s *ProductServiceImpl) UpdateProduct(ctx context.Context, callerID string, data dto.ProductRequest) (err error) {
	ownerID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return errs.ErrNotLoggedIn
	}

	productID, err := primitive.ObjectIDFromHex(data.ID)
	if err != nil {
		return errs.ErrInvalidID
	}

	var (
		product domain.Product
		from    domain.ProductStatus
	)
	err = s.repo.HandleTrx(ctx, func(ctx context.Context) error {
		product, err = s.repo.GetProductByID(ctx, productID)
		if err != nil {
			return err
		}

		if product.OwnerID != ownerID {
			return errs.ErrNotProductOwner
		}

		product.Title = data.Title
		product.Description = data.Description
		product.Price = data.Price
		if data.Quantity != nil {
			product.Quantity = *data.Quantity
		}
		product.Images = nonNil(data.Images)
		product.ARImages = nonNil(data.ARImages)
		product.Keywords = nonNil(data.Keywords)
		product.ProductType = data.ProductType
		product.UpdatedAt = s.now().UTC()

		if err := s.repo.UpdateProductDetails(ctx, product); err != nil {
			return err
		}

		from = product.Status
		to := domain.ProductStatus(data.Visibility)
		if to == "" || to == from {
			return nil
		}

		if !from.IsListed() || !to.IsListed() {
			return errs.ErrInvalidProductVisibility
		}

		if err := s.moveVisibility(ctx, ownerID, productID, from, to); err != nil {
			return err
		}
		product.Status = to

		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, product.ID.Hex(), dto.EventProductUpdated, productEvent(product))

	if product.Status != from {
		metrics.VisibilityTransitions.WithLabelValues(string(product.Status), domain.TransitionCommitted.String()).Inc()
		s.publish(ctx, product.ID.Hex(), dto.EventProductVisibilityChanged, dto.VisibilityChangedEvent{
			ProductID: product.ID.Hex(),
			OwnerID:   product.OwnerID.Hex(),
			From:      string(from),
			To:        string(product.Status),
		})
	}

	return nil
}

// DeleteProduct removes the product and every reference the owner holds to it.
func (s *ProductServiceImpl) DeleteProduct(ctx context.Context, callerID string, id string) (err error) {
	ownerID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return errs.ErrNotLoggedIn
	}

	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.ErrInvalidID
	}

	var product domain.Product
	err = s.repo.HandleTrx(ctx, func(ctx context.Context) error {
		product, err = s.repo.GetProductByID(ctx, productID)
		if err != nil {
			return err
		}

		if product.OwnerID != ownerID {
			return errs.ErrNotProductOwner
		}

		if err := s.repo.DeleteProduct(ctx, productID); err != nil {
			return err
		}

		err := s.repo.PullProductReference(ctx, ownerID, productID, domain.ProductStatusPublic, domain.ProductStatusPrivate)
		if errors.Is(err, errs.ErrUserNotFound) {
			// owner not synced yet, there is no list to clean
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	product.Status = domain.ProductStatusDeleted
	s.publish(ctx, product.ID.Hex(), dto.EventProductDeleted, productEvent(product))

	return nil
}

func (s *ProductServiceImpl) SearchProducts(ctx context.Context, param pkgdto.Filter) (data []dto.ProductResponse, err error) {
	if param.ProductType == "" {
		return nil, errs.ErrClient
	}

	products, err := s.repo.GetProducts(ctx, domain.ProductFilter{
		Status:      domain.ProductStatusPublic,
		ProductType: param.ProductType,
		Limit:       param.Limit,
		Page:        param.Page,
	})
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, errs.ErrProductsNotFound
	}

	return dto.NewProductResponses(products), nil
}

func (s *ProductServiceImpl) GetMyPublicProducts(ctx context.Context, callerID string) (data []dto.ProductResponse, err error) {
	return s.getOwnProducts(ctx, callerID, domain.ProductStatusPublic, errs.ErrNoPublicProducts)
}

func (s *ProductServiceImpl) GetMyPrivateProducts(ctx context.Context, callerID string) (data []dto.ProductResponse, err error) {
	return s.getOwnProducts(ctx, callerID, domain.ProductStatusPrivate, errs.ErrNoPrivateProducts)
}

func (s *ProductServiceImpl) getOwnProducts(ctx context.Context, callerID string, status domain.ProductStatus, notFound error) (data []dto.ProductResponse, err error) {
	ownerID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errs.ErrNotLoggedIn
	}

	user, err := s.repo.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := user.ProductList(status)
	if len(ids) == 0 {
		return nil, notFound
	}

	products, err := s.repo.GetProducts(ctx, domain.ProductFilter{
		IDs:      ids,
		MatchIDs: true,
		Status:   status,
	})
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, notFound
	}

	return dto.NewProductResponses(products), nil
}

func (s *ProductServiceImpl) GetAllProducts(ctx context.Context, param pkgdto.Filter) (data []dto.ProductResponse, err error) {
	products, err := s.repo.GetProducts(ctx, domain.ProductFilter{
		Limit: param.Limit,
		Page:  param.Page,
	})
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, errs.ErrProductsNotFound
	}

	return dto.NewProductResponses(products), nil
}

// publish runs after commit. A failed publish is logged and never undoes the
// committed change. It gives up when the request goes away or publishTimeout
// passes, whichever comes first.
func (s *ProductServiceImpl) publish(ctx context.Context, key string, eventType string, data interface{}) {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	err := s.publisher.Publish(ctx, key, dto.KafkaMessage{
		EventType: eventType,
		Data:      data,
	})
	if err != nil {
		metrics.EventPublishFailures.WithLabelValues(eventType).Inc()
		log.Ctx(ctx).Error().Err(err).Str("component", "publish").Str("event_type", eventType).Msg("event dropped")
	}
}

func productEvent(p domain.Product) dto.ProductEvent {
	return dto.ProductEvent{
		ID:          p.ID.Hex(),
		OwnerID:     p.OwnerID.Hex(),
		Status:      string(p.Status),
		Title:       p.Title,
		Price:       p.Price,
		Quantity:    p.Quantity,
		ProductType: p.ProductType,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
