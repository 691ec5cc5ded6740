package service

import (
	"context"
	"errors"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/metrics"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReconcileVisibility repairs list references that disagree with product
// status. Live products are relinked into exactly their matching owner list,
// then list entries pointing at missing or foreign products are pulled. Each
// repair re-reads its documents inside its own transaction.
func (s *ProductServiceImpl) ReconcileVisibility(ctx context.Context) (repairs int, err error) {
	ctx, span := s.tracer.Start(ctx, "ReconcileVisibility")
	defer span.End()

	products, err := s.repo.GetProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return 0, err
	}

	for _, p := range products {
		if !p.Status.IsListed() {
			continue
		}

		repaired, err := s.reconcileProduct(ctx, p.ID)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "ReconcileVisibility").Str("product_id", p.ID.Hex()).Msg("")
			continue
		}
		if repaired {
			repairs++
		}
	}

	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		return repairs, err
	}

	for _, u := range users {
		for _, status := range []domain.ProductStatus{domain.ProductStatusPublic, domain.ProductStatusPrivate} {
			for _, ref := range u.ProductList(status) {
				repaired, err := s.reconcileReference(ctx, u.ID, ref, status)
				if err != nil {
					log.Ctx(ctx).Error().Err(err).Str("component", "ReconcileVisibility").Str("user_id", u.ID.Hex()).Str("product_id", ref.Hex()).Msg("")
					continue
				}
				if repaired {
					repairs++
				}
			}
		}
	}

	metrics.ReconcileRepairs.Add(float64(repairs))
	if repairs > 0 {
		log.Ctx(ctx).Warn().Str("component", "ReconcileVisibility").Int("repairs", repairs).Msg("visibility drift repaired")
	}

	return repairs, nil
}

func (s *ProductServiceImpl) reconcileProduct(ctx context.Context, productID primitive.ObjectID) (repaired bool, err error) {
	err = s.repo.HandleTrx(ctx, func(ctx context.Context) error {
		repaired = false

		product, err := s.repo.GetProductByID(ctx, productID)
		if errors.Is(err, errs.ErrProductNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !product.Status.IsListed() {
			return nil
		}

		owner, err := s.repo.GetUserByID(ctx, product.OwnerID)
		if err != nil {
			return err
		}

		inMatching := owner.ListsProduct(product.Status, productID)
		inOpposite := owner.ListsProduct(product.Status.Opposite(), productID)
		if inMatching && !inOpposite {
			return nil
		}

		if inOpposite {
			if err := s.repo.PullProductReference(ctx, owner.ID, productID, product.Status.Opposite()); err != nil {
				return err
			}
		}
		if !inMatching {
			if err := s.repo.PushProductReference(ctx, owner.ID, productID, product.Status); err != nil {
				return err
			}
		}

		repaired = true
		return nil
	})

	return repaired, err
}

func (s *ProductServiceImpl) reconcileReference(ctx context.Context, userID, productID primitive.ObjectID, status domain.ProductStatus) (repaired bool, err error) {
	err = s.repo.HandleTrx(ctx, func(ctx context.Context) error {
		repaired = false

		product, err := s.repo.GetProductByID(ctx, productID)
		switch {
		case errors.Is(err, errs.ErrProductNotFound):
		case err != nil:
			return err
		case product.OwnerID != userID:
		default:
			return nil
		}

		user, err := s.repo.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.ListsProduct(status, productID) {
			return nil
		}

		if err := s.repo.PullProductReference(ctx, userID, productID, status); err != nil {
			return err
		}

		repaired = true
		return nil
	})

	return repaired, err
}
