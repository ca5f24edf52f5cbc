package postgres_test

import (
	"context"
	"testing"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/arjun/vidtube-backend/internal/repository/postgres"
	"github.com/arjun/vidtube-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	base, _ := testutil.NewUserBuilder().
		WithEmail("taken@example.com").
		WithUsername("taken").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{
			name: "successful creation",
			user: &domain.User{
				ID:           uuid.New(),
				Email:        "fresh@example.com",
				Username:     "fresh",
				FullName:     "Fresh User",
				PasswordHash: "hashedpassword",
				Avatar:       "https://cdn.test/images/1",
			},
			wantErr: false,
		},
		{
			name: "duplicate email",
			user: &domain.User{
				ID:           uuid.New(),
				Email:        base.Email,
				Username:     "unique_name",
				FullName:     "Dup Email",
				PasswordHash: "hashedpassword",
				Avatar:       "https://cdn.test/images/2",
			},
			wantErr: true,
		},
		{
			name: "duplicate username",
			user: &domain.User{
				ID:           uuid.New(),
				Email:        "unique@example.com",
				Username:     base.Username,
				FullName:     "Dup Username",
				PasswordHash: "hashedpassword",
				Avatar:       "https://cdn.test/images/3",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("lookup@example.com").
		WithUsername("lookup_user").
		Build(t, testDB.DB)

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("get by id not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "lookup@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("get by username", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "lookup_user")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("get by email or username matches either", func(t *testing.T) {
		got, err := repo.GetByEmailOrUsername(ctx, "lookup@example.com", "someone_else")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		got, err = repo.GetByEmailOrUsername(ctx, "someone@else.com", "lookup_user")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("get by email or username not found", func(t *testing.T) {
		_, err := repo.GetByEmailOrUsername(ctx, "nobody@example.com", "nobody")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestUserRepository_UpdateRefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	token := "some-refresh-token"
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, &token))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, token, *got.RefreshToken)

	// Clearing stores NULL, not an empty string
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, nil))

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new-hash"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	err := repo.UpdateFields(ctx, user.ID, map[string]any{
		"full_name": "Renamed User",
		"avatar":    "https://cdn.test/images/new-avatar",
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed User", got.FullName)
	assert.Equal(t, "https://cdn.test/images/new-avatar", got.Avatar)
	assert.Equal(t, user.Email, got.Email)
}

func TestSubscriptionRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSubscriptionRepository(testDB.DB)
	ctx := context.Background()

	channel, _ := testutil.NewUserBuilder().WithUsername("channel_owner").Build(t, testDB.DB)
	alice, _ := testutil.NewUserBuilder().WithUsername("alice_sub").Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().WithUsername("bob_sub").Build(t, testDB.DB)

	testutil.SubscribeUser(t, testDB.DB, alice.ID, channel.ID)
	testutil.SubscribeUser(t, testDB.DB, bob.ID, channel.ID)
	testutil.SubscribeUser(t, testDB.DB, channel.ID, alice.ID)

	t.Run("count by channel", func(t *testing.T) {
		count, err := repo.CountByChannel(ctx, channel.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("count by subscriber", func(t *testing.T) {
		count, err := repo.CountBySubscriber(ctx, channel.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := repo.Exists(ctx, alice.ID, channel.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate pair rejected", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Subscription{
			ID:           uuid.New(),
			SubscriberID: alice.ID,
			ChannelID:    channel.ID,
		})
		assert.Error(t, err)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, bob.ID, channel.ID))
		require.NoError(t, repo.Delete(ctx, bob.ID, channel.ID))

		count, err := repo.CountByChannel(ctx, channel.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
