package repository

import (
	"context"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
	UpdateFields(ctx context.Context, userID uuid.UUID, fields map[string]any) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID uuid.UUID) error
	Exists(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	CountByChannel(ctx context.Context, channelID uuid.UUID) (int64, error)
	CountBySubscriber(ctx context.Context, subscriberID uuid.UUID) (int64, error)
}

type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
}
