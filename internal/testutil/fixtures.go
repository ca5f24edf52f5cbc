package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	username string
	fullName string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		username: fmt.Sprintf("testuser_%s", suffix),
		fullName: "Test User",
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithFullName sets the full name
func (b *UserBuilder) WithFullName(fullName string) *UserBuilder {
	b.fullName = fullName
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		Username:     b.username,
		FullName:     b.fullName,
		PasswordHash: string(hashedPassword),
		Avatar:       "https://cdn.test/images/avatar-default",
		WatchHistory: datatypes.JSON([]byte("[]")),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// SubscribeUser creates a subscription row directly in the database
func SubscribeUser(t *testing.T, db *gorm.DB, subscriberID, channelID uuid.UUID) {
	t.Helper()

	sub := &domain.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
}

// LoginResponse matches the login endpoint's data payload
type LoginResponse struct {
	User struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		FullName string `json:"fullName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates a user via the API and returns the token pair
func (b *UserBuilder) Login(t *testing.T, ts *TestServer) LoginResponse {
	t.Helper()

	reqBody := map[string]string{
		"email":    b.email,
		"password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/users/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	DecodeEnvelope(t, resp, &loginResp)
	return loginResp
}

// BuildAndLogin creates a user in the database and logs them in via the API
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, LoginResponse) {
	t.Helper()

	user, _ := b.Build(t, ts.DB.DB)
	return user, b.Login(t, ts)
}

// MultipartBody builds a multipart registration body with optional image files
func MultipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", key, err)
		}
	}

	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("failed to create form file %s: %v", field, err)
		}
		if _, err := io.WriteString(part, "fake-image-bytes"); err != nil {
			t.Fatalf("failed to write form file %s: %v", field, err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return buf, writer.FormDataContentType()
}
