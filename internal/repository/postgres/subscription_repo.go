package postgres

import (
	"context"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *subscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Subscription{}, "subscriber_id = ? AND channel_id = ?", subscriberID, channelID).Error
}

func (r *subscriptionRepository) Exists(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	return count > 0, err
}

func (r *subscriptionRepository) CountByChannel(ctx context.Context, channelID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}

func (r *subscriptionRepository) CountBySubscriber(ctx context.Context, subscriberID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error
	return count, err
}
