package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/dto"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/repository"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSyncServiceImpl keeps the local user documents in step with the events
// published by the user service. It never touches product lists.
type UserSyncServiceImpl struct {
	repo   repository.UserRepository
	reader MessageReader
	now    func() time.Time
}

func CreateUserSyncService(repo repository.UserRepository, reader MessageReader) UserSyncService {
	return &UserSyncServiceImpl{repo: repo, reader: reader, now: time.Now}
}

// ConsumeEvent reads until ctx is cancelled.
func (s *UserSyncServiceImpl) ConsumeEvent(ctx context.Context) {
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			log.Error().Err(err).Str("component", "ConsumeEvent").Msg("")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := s.HandleUserEvent(ctx, msg.Value); err != nil {
			log.Error().Err(err).Str("component", "ConsumeEvent").Msg("")
		}
	}
}

func (s *UserSyncServiceImpl) HandleUserEvent(ctx context.Context, payload []byte) (err error) {
	var receivedMsg dto.IncomingKafkaMessage
	if err := json.Unmarshal(payload, &receivedMsg); err != nil {
		return err
	}

	switch receivedMsg.EventType {
	case dto.EventUserRegistered, dto.EventUserUpdate, dto.EventUserRoleUpdated:
	default:
		log.Info().Str("component", "HandleUserEvent").Str("event_type", receivedMsg.EventType).Msg("skipping unknown event type")
		return nil
	}

	var data dto.UserEvent
	if err := json.Unmarshal(receivedMsg.Data, &data); err != nil {
		return err
	}

	userID, err := primitive.ObjectIDFromHex(data.ID)
	if err != nil {
		return fmt.Errorf("%s %q: %w", receivedMsg.EventType, data.ID, errs.ErrInvalidID)
	}

	user := domain.User{
		ID:        userID,
		Username:  data.Username,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Role:      domain.NormalizeRole(data.Role),
		CreatedAt: s.now().UTC(),
	}

	switch receivedMsg.EventType {
	case dto.EventUserRegistered:
		return s.repo.UpsertUser(ctx, user)
	case dto.EventUserUpdate:
		err = s.repo.UpdateUserProfile(ctx, user)
		if errors.Is(err, errs.ErrUserNotFound) {
			// registration was missed, the update carries the full profile
			return s.repo.UpsertUser(ctx, user)
		}
		return err
	default:
		return s.repo.UpdateUserRole(ctx, userID, user.Role)
	}
}
