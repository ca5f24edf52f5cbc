package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	FullName     string         `json:"fullName" gorm:"not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Avatar       string         `json:"avatar" gorm:"not null"`
	CoverImage   string         `json:"coverImage"`
	RefreshToken *string        `json:"-"`
	WatchHistory datatypes.JSON `json:"watchHistory" gorm:"type:jsonb;default:'[]'"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Sanitized returns a copy with credential fields cleared so the record can
// cross the transport boundary. The json tags already hide these fields, but
// clearing them keeps the invariant when the struct is logged or copied.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = nil
	return u
}

type Subscription struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriberId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel"`
	ChannelID    uuid.UUID `json:"channelId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"fullName"`
	Avatar            string    `json:"avatar"`
	CoverImage        string    `json:"coverImage"`
	SubscriberCount   int64     `json:"subscriberCount"`
	SubscribedToCount int64     `json:"subscribedToCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
}
