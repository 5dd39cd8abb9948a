package client

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/auth"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/events"
	gs "github.com/dmitrijs2005/wildcard-newsfeed/internal/server/grpc"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/memory"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/services"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/timex"
)

type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) SendVerificationCode(_ context.Context, email, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes[email] = code
	return nil
}

func (i *inbox) code(email string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[email]
}

type nopStorage struct{}

func (nopStorage) Upload(context.Context, []byte, string) (string, error) {
	return "https://cdn.test/media/1", nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func startServer(t *testing.T) (*NewsfeedClient, *inbox) {
	t.Helper()

	store := memory.NewStore()
	box := &inbox{codes: map[string]string{}}
	clock := timex.SystemClock{}
	log := logging.NopLogger{}

	verification := services.NewVerificationService(store, store, box, clock, 30*time.Minute, 5*time.Second, log)
	guard := services.NewResourceGuard(store, store)
	accounts := services.NewAccountService(services.AccountServiceDeps{
		Tx:           store,
		Repos:        store,
		Encoder:      auth.NewArgon2Encoder(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1}),
		Sessions:     auth.NewTokenIssuer([]byte("secret"), time.Hour, clock),
		Verification: verification,
		Guard:        guard,
		Events:       events.NopPublisher{},
		Clock:        clock,
		Timeout:      5 * time.Second,
		Logger:       log,
	})
	media := services.NewMediaService(services.MediaServiceDeps{
		Tx: store, Repos: store, Guard: guard, Storage: nopStorage{}, Events: events.NopPublisher{},
		Clock: clock, MaxSize: 1 << 20, Timeout: 5 * time.Second, Logger: log,
	})

	srv, err := gs.NewGRPCServer("", log, accounts, media, guard, 1<<20)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()

	c, err := New("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		<-done
	})
	return c, box
}

func TestClient_AccountLifecycle(t *testing.T) {
	c, box := startServer(t)
	ctx := context.Background()

	acc, err := c.Signup(ctx, &gs.SignupRequest{LoginCode: "testId1234", Password: "currentPWD999!", Email: "test@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, "UNAUTHORIZED", acc.Status)

	_, err = c.Signup(ctx, &gs.SignupRequest{LoginCode: "testId1234", Password: "currentPWD999!", Email: "test@gmail.com"})
	assert.Equal(t, common.CodeConflict, ErrorReason(err))

	confirmed, err := c.ConfirmEmail(ctx, acc.ID, box.code("test@gmail.com"))
	require.NoError(t, err)
	assert.Equal(t, "ENABLED", confirmed.Status)

	assert.False(t, c.LoggedIn())
	session, err := c.Authenticate(ctx, "testId1234", "currentPWD999!")
	require.NoError(t, err)
	assert.True(t, c.LoggedIn())
	assert.Equal(t, acc.ID, session.Principal.AccountID)

	me, err := c.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Equal(t, "testId1234", me.LoginCode)

	updated, err := c.UpdateProfile(ctx, &gs.UpdateProfileRequest{AccountID: acc.ID, Introduction: "hi", CurrentPassword: "currentPWD999!"})
	require.NoError(t, err)
	assert.Equal(t, "hi", updated.Introduction)

	url, err := c.AttachProfileImage(ctx, &gs.AttachProfileImageRequest{
		AccountID: acc.ID, Filename: "me.png", ContentType: "image/png", Data: pngBytes(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/media/1", url)

	_, err = c.AttachProfileImage(ctx, &gs.AttachProfileImageRequest{
		AccountID: acc.ID, ContentType: "image/png", Data: []byte("not an image"),
	})
	assert.Equal(t, common.CodeUnsupportedMediaType, ErrorReason(err))

	profile, err := c.GetProfile(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, url, profile.ProfileImageURL)

	require.NoError(t, c.Resign(ctx, acc.ID, "currentPWD999!"))
	assert.False(t, c.LoggedIn())

	_, err = c.Authenticate(ctx, "testId1234", "currentPWD999!")
	assert.Equal(t, common.CodeInvalidCredentials, ErrorReason(err))

	_, err = c.GetProfile(ctx, acc.ID)
	assert.Equal(t, common.CodeNotFound, ErrorReason(err))
}

func TestClient_ValidationErrors(t *testing.T) {
	c, _ := startServer(t)

	_, err := c.Signup(context.Background(), &gs.SignupRequest{LoginCode: "bad login", Password: "", Email: "test@gmail.com"})
	require.Error(t, err)
	assert.Equal(t, common.CodeValidationFailed, ErrorReason(err))

	fields := FieldErrors(err)
	assert.Contains(t, fields, "loginCode")
	assert.Contains(t, fields, "password")
	assert.NotContains(t, fields, "email")
}

func TestClient_ProtectedCallWithoutLogin(t *testing.T) {
	c, _ := startServer(t)

	err := c.ResendVerificationCode(context.Background())
	assert.Equal(t, common.CodeTokenInvalid, ErrorReason(err))
}

func TestErrorReason_NonStatus(t *testing.T) {
	assert.Equal(t, common.CodeInternal, ErrorReason(assert.AnError))
	assert.Nil(t, FieldErrors(assert.AnError))
}
