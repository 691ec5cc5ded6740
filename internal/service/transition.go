package service

import (
	"context"
	"errors"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/dto"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/metrics"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (s *ProductServiceImpl) MakePrivate(ctx context.Context, callerID string, id string) domain.TransitionResult {
	return s.changeVisibility(ctx, callerID, id, domain.ProductStatusPublic, domain.ProductStatusPrivate)
}

func (s *ProductServiceImpl) MakePublic(ctx context.Context, callerID string, id string) domain.TransitionResult {
	return s.changeVisibility(ctx, callerID, id, domain.ProductStatusPrivate, domain.ProductStatusPublic)
}

// changeVisibility moves a product the caller owns from the from-list to the
// to-list and flips its status, all in one transaction. Either every write
// lands or none does.
func (s *ProductServiceImpl) changeVisibility(ctx context.Context, callerID string, id string, from, to domain.ProductStatus) (result domain.TransitionResult) {
	ctx, span := s.tracer.Start(ctx, "ChangeVisibility", trace.WithAttributes(
		attribute.String("product.id", id),
		attribute.String("product.visibility.from", string(from)),
		attribute.String("product.visibility.to", string(to)),
	))
	defer func() {
		metrics.VisibilityTransitions.WithLabelValues(string(to), result.Outcome.String()).Inc()
		if !result.IsCommitted() {
			span.RecordError(result.Reason)
			span.SetStatus(codes.Error, result.Reason.Error())
		}
		span.End()
	}()

	ownerID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return domain.Aborted(from, to, errs.ErrNotLoggedIn)
	}

	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Aborted(from, to, errs.ErrInvalidID)
	}

	err = s.repo.HandleTrx(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserByID(ctx, ownerID)
		if err != nil {
			return err
		}

		if !user.ListsProduct(from, productID) {
			return notInListError(from)
		}

		product, err := s.repo.GetProductByID(ctx, productID)
		if err != nil {
			return err
		}

		if product.OwnerID != ownerID {
			return errs.ErrNotProductOwner
		}

		return s.moveVisibility(ctx, ownerID, productID, from, to)
	})
	if err != nil {
		log.Ctx(ctx).Info().Err(err).Str("component", "ChangeVisibility").Str("product_id", id).Msg("transition aborted")
		return domain.Aborted(from, to, err)
	}

	s.publish(ctx, id, dto.EventProductVisibilityChanged, dto.VisibilityChangedEvent{
		ProductID: id,
		OwnerID:   callerID,
		From:      string(from),
		To:        string(to),
	})

	return domain.Committed(from, to)
}

// moveVisibility is the only place product status and list membership change
// together. It must run inside HandleTrx. The list move only matches while the
// product is still in the from-list, so a concurrent transition that already
// committed turns this one into a not-found abort.
func (s *ProductServiceImpl) moveVisibility(ctx context.Context, ownerID, productID primitive.ObjectID, from, to domain.ProductStatus) error {
	err := s.repo.MoveProductReference(ctx, ownerID, productID, from, to)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return notInListError(from)
		}
		return err
	}

	return s.repo.SetProductStatus(ctx, productID, to)
}

func notInListError(status domain.ProductStatus) error {
	if status == domain.ProductStatusPrivate {
		return errs.ErrNotInPrivateProducts
	}
	return errs.ErrNotInPublicProducts
}
