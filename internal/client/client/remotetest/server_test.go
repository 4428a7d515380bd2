package remotetest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/client/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, opts ...remotetest.Option) (*remotetest.Server, *client.HTTPClient) {
	t.Helper()
	fake := remotetest.NewServer(opts...)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, client.NewHTTPClient(client.HTTPClientConfig{BaseURL: srv.URL, Timeout: time.Second}, srv.Client())
}

func TestServer_RegisterLoginRoundTrip(t *testing.T) {
	fake, c := start(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, " Alice@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.NotEmpty(t, reg.User.ID)

	uid, err := fake.VerifyToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, uid)

	login, err := c.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.Equal(t, "Login successful", login.Message)

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, fake.Hits("POST /api/register"))
}

func TestServer_Rejections(t *testing.T) {
	_, c := start(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "a@x.com", "123")
	var re *client.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
	assert.Equal(t, "Password must be at least 6 characters long", re.Message)

	_, err = c.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	_, err = c.Register(ctx, "a@x.com", "secret1")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "User with this email already exists", re.Message)

	_, err = c.Login(ctx, "a@x.com", "wrong!")
	require.ErrorIs(t, err, client.ErrUnauthorized)
	_, err = c.Login(ctx, "nobody@x.com", "secret1")
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestServer_DownAndHealthRoute(t *testing.T) {
	fake, c := start(t, remotetest.WithoutHealthRoute())
	ctx := context.Background()

	require.Error(t, c.Health(ctx))
	require.NoError(t, c.ProbeRoot(ctx))

	fake.SetDown(true)
	require.ErrorIs(t, c.ProbeRoot(ctx), client.ErrRejected)
	_, err := c.Register(ctx, "a@x.com", "secret1")
	require.ErrorIs(t, err, client.ErrRejected)
	assert.Empty(t, fake.Users())

	fake.SetDown(false)
	_, err = c.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
}

func TestToken_Expired(t *testing.T) {
	secret := []byte("k")
	token, err := remotetest.GenerateToken("u1", secret, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = remotetest.UserIDFromToken(token, secret)
	require.Error(t, err)

	token, err = remotetest.GenerateToken("u1", secret, time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = remotetest.UserIDFromToken(token, []byte("other"))
	require.Error(t, err)
}
