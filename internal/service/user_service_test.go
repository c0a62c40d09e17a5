package service_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"Community_Feed/internal/pkg"
	"Community_Feed/internal/service"
	"Community_Feed/internal/testutil"
)

type userEnv struct {
	*testEnv
	users     *service.UserService
	tokens    *pkg.TokenManager
	blacklist *testutil.MemoryBlacklist
	mail      *testutil.MailRecorder
}

func newUserEnv(t *testing.T) *userEnv {
	env := newTestEnv(t)
	tokens := pkg.NewTokenManager(pkg.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	}, env.clock)
	blacklist := testutil.NewMemoryBlacklist()
	mail := &testutil.MailRecorder{}
	deps := service.Deps{DB: env.db, Events: env.events, Clock: env.clock}

	return &userEnv{
		testEnv:   env,
		users:     service.NewUserService(deps, tokens, blacklist, mail),
		tokens:    tokens,
		blacklist: blacklist,
		mail:      mail,
	}
}

func registerInput() service.RegisterInput {
	password := gofakeit.Password(true, true, true, false, false, 12)
	return service.RegisterInput{
		Username:  gofakeit.Username(),
		Email:     gofakeit.Email(),
		Password:  password,
		Password2: password,
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}
}

func TestRegister(t *testing.T) {
	ctx := testutil.Context(t)
	env := newUserEnv(t)
	in := registerInput()

	user, pair, err := env.users.Register(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, in.Username, user.Username)
	require.NotEqual(t, in.Password, user.Password)
	require.True(t, env.clock.NowUtc().Equal(user.CreatedAt))

	claims, err := env.tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)

	require.Equal(t, []string{in.Email}, env.mail.Sent)
	require.Equal(t, []string{service.EventUserRegistered}, env.events.Types())

	_, _, err = env.users.Register(ctx, in)
	requireKind(t, pkg.KindValidation, err)
	var e *pkg.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, []string{"A user with that username already exists."}, e.Fields["username"])
}

func TestRegisterPasswordChecks(t *testing.T) {
	ctx := testutil.Context(t)
	env := newUserEnv(t)

	in := registerInput()
	in.Password2 = in.Password + "x"
	_, _, err := env.users.Register(ctx, in)
	requireKind(t, pkg.KindValidation, err)
	var e *pkg.Error
	require.ErrorAs(t, err, &e)
	require.Contains(t, e.Fields["password"], "Password fields didn't match.")

	in = registerInput()
	in.Password, in.Password2 = "short", "short"
	_, _, err = env.users.Register(ctx, in)
	requireKind(t, pkg.KindValidation, err)
	require.Empty(t, env.mail.Sent)
}

func TestLogin(t *testing.T) {
	ctx := testutil.Context(t)
	env := newUserEnv(t)
	in := registerInput()
	registered, _, err := env.users.Register(ctx, in)
	require.NoError(t, err)

	user, pair, err := env.users.Login(ctx, in.Username, in.Password)
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, pair.RefreshToken)

	_, _, err = env.users.Login(ctx, in.Username, "wrong-password")
	requireKind(t, pkg.KindAuthentication, err)
	_, _, err = env.users.Login(ctx, "nobody", in.Password)
	requireKind(t, pkg.KindAuthentication, err)
}

func TestRefreshRotates(t *testing.T) {
	ctx := testutil.Context(t)
	env := newUserEnv(t)
	_, pair, err := env.users.Register(ctx, registerInput())
	require.NoError(t, err)

	next, err := env.users.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// 旧 refresh 已经作废
	_, err = env.users.Refresh(ctx, pair.RefreshToken)
	requireKind(t, pkg.KindAuthentication, err)

	_, err = env.users.Refresh(ctx, pair.AccessToken)
	requireKind(t, pkg.KindAuthentication, err)
}

func TestLogout(t *testing.T) {
	ctx := testutil.Context(t)
	env := newUserEnv(t)
	user, pair, err := env.users.Register(ctx, registerInput())
	require.NoError(t, err)

	err = env.users.Logout(ctx, user.ID+1, pair.RefreshToken)
	requireKind(t, pkg.KindValidation, err)

	require.NoError(t, env.users.Logout(ctx, user.ID, pair.RefreshToken))
	require.Equal(t, 1, env.blacklist.Len())

	err = env.users.Logout(ctx, user.ID, pair.RefreshToken)
	requireKind(t, pkg.KindValidation, err)
	_, err = env.users.Refresh(ctx, pair.RefreshToken)
	requireKind(t, pkg.KindAuthentication, err)
}

func TestUpdateProfile(t *testing.T) {
	ctx := testutil.Context(t)
	env := newUserEnv(t)
	user, _, err := env.users.Register(ctx, registerInput())
	require.NoError(t, err)

	first := "Ada"
	email := "ada@example.com"
	updated, err := env.users.UpdateProfile(ctx, user.ID, service.ProfileUpdate{FirstName: &first, Email: &email})
	require.NoError(t, err)
	require.Equal(t, "Ada", updated.FirstName)
	require.Equal(t, email, updated.Email)
	require.Equal(t, user.LastName, updated.LastName)

	_, err = env.users.Profile(ctx, 9999)
	requireKind(t, pkg.KindNotFound, err)
}
