package service

import (
	"context"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/dto"
	pkgdto "github.com/ahmadrazza2001/backend-trynbuy/pkg/dto"
	"github.com/segmentio/kafka-go"
)

type ProductService interface {
	AddProduct(ctx context.Context, callerID string, data dto.ProductRequest) (id string, err error)
	UpdateProduct(ctx context.Context, callerID string, data dto.ProductRequest) (err error)
	DeleteProduct(ctx context.Context, callerID string, id string) (err error)

	SearchProducts(ctx context.Context, param pkgdto.Filter) (data []dto.ProductResponse, err error)
	GetMyPublicProducts(ctx context.Context, callerID string) (data []dto.ProductResponse, err error)
	GetMyPrivateProducts(ctx context.Context, callerID string) (data []dto.ProductResponse, err error)
	GetAllProducts(ctx context.Context, param pkgdto.Filter) (data []dto.ProductResponse, err error)

	MakePrivate(ctx context.Context, callerID string, id string) domain.TransitionResult
	MakePublic(ctx context.Context, callerID string, id string) domain.TransitionResult

	ReconcileVisibility(ctx context.Context) (repairs int, err error)
}

type UserSyncService interface {
	ConsumeEvent(ctx context.Context)
	HandleUserEvent(ctx context.Context, payload []byte) (err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, msg dto.KafkaMessage) error
}

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}
