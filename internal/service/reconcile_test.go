package service

import (
	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *ProductServiceSuite) TestReconcileVisibility_NoDrift() {
	owner := s.seedUser("alice", domain.RoleVendor)
	s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	s.seedProduct(owner, domain.ProductStatusPrivate, "hats")

	repairs, err := s.svc.ReconcileVisibility(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, repairs)
}

func (s *ProductServiceSuite) TestReconcileVisibility_RepairsDrift() {
	owner := s.seedUser("alice", domain.RoleVendor)
	other := s.seedUser("bob", domain.RoleVendor)

	// linked into the wrong list
	wrongList := s.seedProduct(owner, domain.ProductStatusPublic, "shoes")
	p, _ := s.repo.Product(wrongList.ID)
	p.Status = domain.ProductStatusPrivate
	s.repo.SeedProduct(p)

	// not linked at all
	unlinked := domain.Product{
		ID:        primitive.NewObjectID(),
		OwnerID:   owner.ID,
		Status:    domain.ProductStatusPublic,
		CreatedAt: fixedNow,
	}
	s.repo.SeedProduct(unlinked)

	// dangling and foreign references
	dangling := primitive.NewObjectID()
	foreign := s.seedProduct(other, domain.ProductStatusPublic, "bags")
	u, _ := s.repo.User(owner.ID)
	u.PublicProducts = append(u.PublicProducts, dangling, foreign.ID)
	s.repo.SeedUser(u)

	repairs, err := s.svc.ReconcileVisibility(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, repairs)

	s.requireConsistent(wrongList.ID)
	s.requireConsistent(unlinked.ID)
	s.requireConsistent(foreign.ID)

	u, _ = s.repo.User(owner.ID)
	s.False(u.ListsProduct(domain.ProductStatusPublic, dangling))
	s.False(u.ListsProduct(domain.ProductStatusPublic, foreign.ID))

	repairs, err = s.svc.ReconcileVisibility(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, repairs)
}

func (s *ProductServiceSuite) TestReconcileVisibility_MissingOwnerIsSkipped() {
	orphan := domain.Product{
		ID:        primitive.NewObjectID(),
		OwnerID:   primitive.NewObjectID(),
		Status:    domain.ProductStatusPublic,
		CreatedAt: fixedNow,
	}
	s.repo.SeedProduct(orphan)

	repairs, err := s.svc.ReconcileVisibility(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, repairs)
}
