package service_test

import (
	"context"
	"testing"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/arjun/vidtube-backend/internal/repository/postgres"
	"github.com/arjun/vidtube-backend/internal/service"
	"github.com/arjun/vidtube-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*service.UserService, *testutil.FakeUploader, *testutil.TestDB) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	uploader := testutil.NewFakeUploader()
	return service.NewUserService(repos.User, repos.Subscription, uploader), uploader, testDB
}

func validRegisterInput() service.RegisterInput {
	return service.RegisterInput{
		Email:      "a@b.com",
		Username:   "Alice",
		FullName:   "Alice A",
		Password:   "pw123",
		AvatarPath: "/tmp/avatar.png",
	}
}

func TestUserService_Register(t *testing.T) {
	userService, uploader, testDB := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*service.RegisterInput)
		setup   func(t *testing.T)
		fail    bool
		wantErr error
		check   func(t *testing.T, user *domain.User)
	}{
		{
			name: "successful registration normalizes and sanitizes",
			check: func(t *testing.T, user *domain.User) {
				assert.Equal(t, "a@b.com", user.Email)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "Alice A", user.FullName)
				assert.Empty(t, user.PasswordHash)
				assert.Nil(t, user.RefreshToken)
				assert.NotEmpty(t, user.Avatar)
			},
		},
		{
			name:   "mixed-case email is lowered",
			mutate: func(in *service.RegisterInput) { in.Email = "A@B.Com"; in.Username = "BOB" },
			check: func(t *testing.T, user *domain.User) {
				assert.Equal(t, "a@b.com", user.Email)
				assert.Equal(t, "bob", user.Username)
			},
		},
		{
			name:    "blank full name",
			mutate:  func(in *service.RegisterInput) { in.FullName = "   " },
			wantErr: domain.ErrValidation("all fields are required"),
		},
		{
			name:    "missing avatar",
			mutate:  func(in *service.RegisterInput) { in.AvatarPath = "" },
			wantErr: domain.ErrValidation("avatar image is required"),
		},
		{
			name: "duplicate email",
			setup: func(t *testing.T) {
				testutil.NewUserBuilder().WithEmail("a@b.com").Build(t, testDB.DB)
			},
			wantErr: service.ErrUserExists,
		},
		{
			name: "duplicate username with different email",
			setup: func(t *testing.T) {
				testutil.NewUserBuilder().WithUsername("alice").Build(t, testDB.DB)
			},
			wantErr: service.ErrUserExists,
		},
		{
			name:    "avatar upload failure",
			fail:    true,
			wantErr: domain.ErrUpstream("failed to upload avatar", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			uploader.Fail = tt.fail

			if tt.setup != nil {
				tt.setup(t)
			}

			input := validRegisterInput()
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			user, err := userService.Register(ctx, input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, user)
			}
		})
	}
}

func TestUserService_RegisterToleratesCoverFailure(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)

	// Uploader that succeeds once (avatar) then fails (cover)
	uploader := testutil.NewFlakyUploader(1)
	userService := service.NewUserService(repos.User, repos.Subscription, uploader)

	input := validRegisterInput()
	input.CoverImagePath = "/tmp/cover.png"

	user, err := userService.Register(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, user.Avatar)
	assert.Empty(t, user.CoverImage)
}

func TestUserService_UpdateAccount(t *testing.T) {
	userService, _, testDB := newUserService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	updated, err := userService.UpdateAccount(ctx, user.ID, "New Name", "New@Email.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "new@email.com", updated.Email)

	_, err = userService.UpdateAccount(ctx, user.ID, "", "x@y.com")
	require.Error(t, err)
}

func TestUserService_UpdateAvatar(t *testing.T) {
	userService, uploader, testDB := newUserService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	updated, err := userService.UpdateAvatar(ctx, user.ID, "/tmp/new-avatar.png")
	require.NoError(t, err)
	assert.NotEqual(t, user.Avatar, updated.Avatar)
	assert.Len(t, uploader.Uploads(), 1)

	uploader.Fail = true
	_, err = userService.UpdateAvatar(ctx, user.ID, "/tmp/another.png")
	require.Error(t, err)
}

func TestUserService_ChannelProfile(t *testing.T) {
	userService, _, testDB := newUserService(t)
	ctx := context.Background()

	channel, _ := testutil.NewUserBuilder().WithUsername("channel").Build(t, testDB.DB)
	alice, _ := testutil.NewUserBuilder().WithUsername("alice").Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().WithUsername("bob").Build(t, testDB.DB)

	testutil.SubscribeUser(t, testDB.DB, alice.ID, channel.ID)
	testutil.SubscribeUser(t, testDB.DB, bob.ID, channel.ID)
	testutil.SubscribeUser(t, testDB.DB, channel.ID, alice.ID)

	t.Run("aggregates counts for a subscriber", func(t *testing.T) {
		profile, err := userService.ChannelProfile(ctx, "channel", alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), profile.SubscriberCount)
		assert.Equal(t, int64(1), profile.SubscribedToCount)
		assert.True(t, profile.IsSubscribed)
	})

	t.Run("viewer without subscription", func(t *testing.T) {
		profile, err := userService.ChannelProfile(ctx, "CHANNEL", channel.ID)
		require.NoError(t, err)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := userService.ChannelProfile(ctx, "ghost", alice.ID)
		assert.ErrorIs(t, err, service.ErrChannelNotFound)
	})
}

func TestUserService_Subscribe(t *testing.T) {
	userService, _, testDB := newUserService(t)
	ctx := context.Background()

	channel, _ := testutil.NewUserBuilder().WithUsername("creator").Build(t, testDB.DB)
	viewer, _ := testutil.NewUserBuilder().WithUsername("viewer").Build(t, testDB.DB)

	require.NoError(t, userService.Subscribe(ctx, viewer.ID, "creator"))

	// Subscribing twice is a no-op
	require.NoError(t, userService.Subscribe(ctx, viewer.ID, "creator"))

	profile, err := userService.ChannelProfile(ctx, "creator", viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscriberCount)
	assert.True(t, profile.IsSubscribed)

	t.Run("self-subscription rejected", func(t *testing.T) {
		err := userService.Subscribe(ctx, channel.ID, "creator")
		require.Error(t, err)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		require.NoError(t, userService.Unsubscribe(ctx, viewer.ID, "creator"))

		profile, err := userService.ChannelProfile(ctx, "creator", viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), profile.SubscriberCount)
		assert.False(t, profile.IsSubscribed)
	})
}

func TestUserService_WatchHistory(t *testing.T) {
	userService, _, testDB := newUserService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	history, err := userService.WatchHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(history))

	_, err = userService.WatchHistory(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
