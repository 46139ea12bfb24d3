package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	nextID int
	users  map[int]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrEmailAlreadyTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, userID int, role models.UserRole) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	r.users[userID] = u
	return nil
}

func newAuthFixture() (AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, "test-secret", logger), repo
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newAuthFixture()
	ctx := context.Background()

	user := &models.User{FirstName: "Ada", LastName: "Nowak", Email: "ada@example.com"}
	require.NoError(t, auth.Register(ctx, user, "correct horse"))
	assert.Equal(t, models.RolePlayer, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	token, loggedIn, err := auth.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RolePlayer, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newAuthFixture()
	ctx := context.Background()

	err := auth.Register(ctx, &models.User{Email: ""}, "long enough")
	assert.ErrorIs(t, err, ErrValidation)

	err = auth.Register(ctx, &models.User{Email: "short@example.com"}, "short")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, auth.Register(ctx, &models.User{Email: "dup@example.com"}, "long enough"))
	err = auth.Register(ctx, &models.User{Email: "dup@example.com"}, "long enough")
	assert.ErrorIs(t, err, repositories.ErrEmailAlreadyTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, &models.User{Email: "ada@example.com"}, "correct horse"))

	_, _, err := auth.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, _, err = auth.Login(ctx, models.Credentials{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	auth, _ := newAuthFixture()

	_, err := auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	other, _ := newAuthFixture()
	require.NoError(t, other.Register(context.Background(), &models.User{Email: "x@example.com"}, "long enough"))
	token, _, err := other.Login(context.Background(), models.Credentials{Email: "x@example.com", Password: "long enough"})
	require.NoError(t, err)

	// same secret in both fixtures, so cross-parse succeeds; tamper to break it
	_, err = auth.ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
