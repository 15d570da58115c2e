package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	"github.com/yungbote/learnsphere-backend/internal/data/repos/testutil"
	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
	"github.com/yungbote/learnsphere-backend/internal/platform/ctxutil"
)

func newAuthEnv(t *testing.T) (AuthService, UserService) {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)
	userRepo := repos.NewUserRepo(db, log)
	auth := NewAuthService(db, log, userRepo, repos.NewUserTokenRepo(db, log), "test-secret", 15*time.Minute, 24*time.Hour, 3)
	return auth, NewUserService(log, userRepo)
}

func TestRegisterLoginLogout(t *testing.T) {
	auth, users := newAuthEnv(t)
	ctx := context.Background()

	u, pair, err := auth.Register(ctx, RegisterInput{Email: "  Ada@Example.com ", Password: "correct-horse", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, 3, u.Credits)
	assert.NotEqual(t, "correct-horse", u.Password)
	assert.Equal(t, 900, pair.ExpiresIn)

	_, _, err = auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another-one"})
	assert.True(t, errors.Is(err, pkgerrors.ErrConflict))
	_, _, err = auth.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "short"})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	_, _, err = auth.Register(ctx, RegisterInput{Email: "not-an-email", Password: "long-enough"})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	_, _, err = auth.Login(ctx, "ada@example.com", "wrong-password")
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))
	_, _, err = auth.Login(ctx, "nobody@example.com", "correct-horse")
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))

	_, second, err := auth.Login(ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, second.AccessToken)

	authed, err := auth.SetContextFromToken(ctx, second.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, u.ID, rd.UserID)

	me, err := users.GetMe(authed)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	require.NoError(t, auth.Logout(authed))
	_, err = auth.SetContextFromToken(ctx, second.AccessToken)
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))

	// the first session is independent
	_, err = auth.SetContextFromToken(ctx, pair.AccessToken)
	require.NoError(t, err)
}

func TestRefreshRotatesTokens(t *testing.T) {
	auth, _ := newAuthEnv(t)
	ctx := context.Background()

	_, pair, err := auth.Register(ctx, RegisterInput{Email: "r@example.com", Password: "password1"})
	require.NoError(t, err)

	next, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))
	_, err = auth.SetContextFromToken(ctx, pair.AccessToken)
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))
	_, err = auth.SetContextFromToken(ctx, next.AccessToken)
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, "")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
}

func TestTokenValidation(t *testing.T) {
	auth, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := auth.SetContextFromToken(ctx, "")
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))
	_, err = auth.SetContextFromToken(ctx, "not.a.jwt")
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))

	_, pair, err := auth.Register(ctx, RegisterInput{Email: "exp@example.com", Password: "password1"})
	require.NoError(t, err)
	as := auth.(*authService)
	as.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = auth.SetContextFromToken(ctx, pair.AccessToken)
	assert.True(t, errors.Is(err, pkgerrors.ErrUnauthorized))
}

func TestGrantCredits(t *testing.T) {
	auth, users := newAuthEnv(t)
	ctx := context.Background()
	_, _, err := auth.Register(ctx, RegisterInput{Email: "g@example.com", Password: "password1"})
	require.NoError(t, err)

	u, err := users.GrantCredits(ctx, "G@example.com", 7)
	require.NoError(t, err)
	assert.Equal(t, 10, u.Credits)

	_, err = users.GrantCredits(ctx, "g@example.com", 0)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	_, err = users.GrantCredits(ctx, "missing@example.com", 1)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	u, err = users.SetSubscribed(ctx, "g@example.com", true)
	require.NoError(t, err)
	assert.True(t, u.IsSubscribed)
}
