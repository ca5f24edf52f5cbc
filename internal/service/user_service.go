package service

import (
	"context"
	"errors"
	"strings"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/arjun/vidtube-backend/internal/media"
	"github.com/arjun/vidtube-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUserExists      = domain.ErrConflict("user with email or username already exists")
	ErrChannelNotFound = domain.ErrNotFound("channel does not exist")
)

// UserService covers account creation and everything about the profile that
// is not session state: avatar/cover updates, account details, the channel
// profile aggregation and watch history.
type UserService struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	uploader media.Uploader
}

func NewUserService(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository, uploader media.Uploader) *UserService {
	return &UserService{
		userRepo: userRepo,
		subRepo:  subRepo,
		uploader: uploader,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string

	// Local paths of the spooled multipart uploads. AvatarPath is required,
	// CoverImagePath may be empty.
	AvatarPath     string
	CoverImagePath string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))
	fullName := strings.TrimSpace(input.FullName)

	if email == "" || username == "" || fullName == "" || strings.TrimSpace(input.Password) == "" {
		return nil, domain.ErrValidation("all fields are required")
	}
	if input.AvatarPath == "" {
		return nil, domain.ErrValidation("avatar image is required")
	}

	existing, err := s.userRepo.GetByEmailOrUsername(ctx, email, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInternal("failed to look up user", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	avatarURL, err := s.uploader.Upload(ctx, input.AvatarPath)
	if err != nil {
		return nil, domain.ErrUpstream("failed to upload avatar", err)
	}

	coverURL := ""
	if input.CoverImagePath != "" {
		coverURL, err = s.uploader.Upload(ctx, input.CoverImagePath)
		if err != nil {
			// The cover image is optional; registration proceeds without it.
			log.Warn().Err(err).Str("username", username).Msg("cover image upload failed")
			coverURL = ""
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("failed to hash password", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: string(hash),
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		WatchHistory: datatypes.JSON([]byte("[]")),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, domain.ErrInternal("failed to create user", err)
	}

	created, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, domain.ErrInternal("failed to fetch created user", err)
	}

	sanitized := created.Sanitized()
	return &sanitized, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, domain.ErrInternal("failed to look up user", err)
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (*domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, domain.ErrValidation("full name and email are required")
	}

	err := s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"full_name": fullName,
		"email":     email,
	})
	if err != nil {
		return nil, domain.ErrInternal("failed to update account details", err)
	}

	return s.GetByID(ctx, userID)
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	return s.updateImage(ctx, userID, localPath, "avatar")
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	return s.updateImage(ctx, userID, localPath, "cover_image")
}

func (s *UserService) updateImage(ctx context.Context, userID uuid.UUID, localPath, column string) (*domain.User, error) {
	if localPath == "" {
		return nil, domain.ErrValidation("image file is required")
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, domain.ErrUpstream("failed to upload image", err)
	}

	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{column: url}); err != nil {
		return nil, domain.ErrInternal("failed to update image", err)
	}

	return s.GetByID(ctx, userID)
}

// ChannelProfile aggregates the public channel view for a username, including
// subscriber counts and whether the viewer is subscribed.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*domain.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, domain.ErrValidation("username is required")
	}

	channel, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, domain.ErrInternal("failed to look up channel", err)
	}

	subscribers, err := s.subRepo.CountByChannel(ctx, channel.ID)
	if err != nil {
		return nil, domain.ErrInternal("failed to count subscribers", err)
	}

	subscribedTo, err := s.subRepo.CountBySubscriber(ctx, channel.ID)
	if err != nil {
		return nil, domain.ErrInternal("failed to count subscriptions", err)
	}

	isSubscribed := false
	if viewerID != uuid.Nil {
		isSubscribed, err = s.subRepo.Exists(ctx, viewerID, channel.ID)
		if err != nil {
			return nil, domain.ErrInternal("failed to check subscription", err)
		}
	}

	return &domain.ChannelProfile{
		ID:                channel.ID,
		Username:          channel.Username,
		FullName:          channel.FullName,
		Avatar:            channel.Avatar,
		CoverImage:        channel.CoverImage,
		SubscriberCount:   subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      isSubscribed,
	}, nil
}

// Subscribe is idempotent: subscribing twice leaves a single subscription.
func (s *UserService) Subscribe(ctx context.Context, subscriberID uuid.UUID, channelUsername string) error {
	channel, err := s.channelByUsername(ctx, channelUsername)
	if err != nil {
		return err
	}
	if channel.ID == subscriberID {
		return domain.ErrValidation("cannot subscribe to your own channel")
	}

	exists, err := s.subRepo.Exists(ctx, subscriberID, channel.ID)
	if err != nil {
		return domain.ErrInternal("failed to check subscription", err)
	}
	if exists {
		return nil
	}

	sub := &domain.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriberID,
		ChannelID:    channel.ID,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return domain.ErrInternal("failed to create subscription", err)
	}
	return nil
}

func (s *UserService) Unsubscribe(ctx context.Context, subscriberID uuid.UUID, channelUsername string) error {
	channel, err := s.channelByUsername(ctx, channelUsername)
	if err != nil {
		return err
	}
	if err := s.subRepo.Delete(ctx, subscriberID, channel.ID); err != nil {
		return domain.ErrInternal("failed to delete subscription", err)
	}
	return nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID uuid.UUID) (datatypes.JSON, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, domain.ErrInternal("failed to look up user", err)
	}
	if len(user.WatchHistory) == 0 {
		return datatypes.JSON([]byte("[]")), nil
	}
	return user.WatchHistory, nil
}

func (s *UserService) channelByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, domain.ErrValidation("username is required")
	}
	channel, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, domain.ErrInternal("failed to look up channel", err)
	}
	return channel, nil
}
