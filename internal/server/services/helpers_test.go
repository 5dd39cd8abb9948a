package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/auth"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/events"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/memory"
)

const (
	testLogin    = "testId1234"
	testPassword = "currentPWD999!"
	testEmail    = "test@gmail.com"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeNotifier struct {
	mu    sync.Mutex
	codes map[string][]string
	err   error
	block bool
	lag   time.Duration // slept before replying, ignoring ctx

	// when held is set, a send reports on held and then fails once
	// release is closed
	held    chan struct{}
	release chan struct{}
}

func (n *fakeNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	time.Sleep(n.lag)
	if n.held != nil {
		n.held <- struct{}{}
		select {
		case <-n.release:
			return errors.New("smtp relay down")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = map[string][]string{}
	}
	n.codes[email] = append(n.codes[email], code)
	return nil
}

func (n *fakeNotifier) last(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := n.codes[email]
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

func (n *fakeNotifier) count(email string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.codes[email])
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads int
	err     error
}

func (s *fakeStorage) Upload(_ context.Context, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.uploads++
	return fmt.Sprintf("https://cdn.test/media/%d", s.uploads), nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeEvents) types() []events.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Type
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	store        *memory.Store
	clock        *fakeClock
	notifier     *fakeNotifier
	storage      *fakeStorage
	events       *fakeEvents
	encoder      auth.PasswordEncoder
	verification *VerificationService
	guard        *ResourceGuard
	accounts     *AccountService
	media        *MediaService
}

type envOption func(*envConfig)

type envConfig struct {
	timeout time.Duration
	maxSize int64
}

func withOpTimeout(d time.Duration) envOption { return func(c *envConfig) { c.timeout = d } }
func withMaxSize(n int64) envOption { return func(c *envConfig) { c.maxSize = n } }

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	cfg := envConfig{timeout: 5 * time.Second, maxSize: 1 << 20}
	for _, o := range opts {
		o(&cfg)
	}

	e := &env{
		store:    memory.NewStore(),
		clock:    &fakeClock{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)},
		notifier: &fakeNotifier{},
		storage:  &fakeStorage{},
		events:   &fakeEvents{},
		encoder:  auth.NewArgon2Encoder(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1}),
	}

	log := logging.NopLogger{}
	e.verification = NewVerificationService(e.store, e.store, e.notifier, e.clock, 30*time.Minute, cfg.timeout, log)
	e.guard = NewResourceGuard(e.store, e.store)
	e.accounts = NewAccountService(AccountServiceDeps{
		Tx:           e.store,
		Repos:        e.store,
		Encoder:      e.encoder,
		Sessions:     auth.NewTokenIssuer([]byte("test-secret"), time.Hour, e.clock),
		Verification: e.verification,
		Guard:        e.guard,
		Events:       e.events,
		Clock:        e.clock,
		Timeout:      cfg.timeout,
		Logger:       log,
	})
	e.media = NewMediaService(MediaServiceDeps{
		Tx:      e.store,
		Repos:   e.store,
		Guard:   e.guard,
		Storage: e.storage,
		Events:  e.events,
		Clock:   e.clock,
		MaxSize: cfg.maxSize,
		Timeout: cfg.timeout,
		Logger:  log,
	})
	return e
}

func signupReq(login, email string) models.SignupRequest {
	return models.SignupRequest{LoginCode: login, Password: testPassword, Email: email}
}

// enabledAccount signs up and verifies an account, returning its principal.
func (e *env) enabledAccount(t *testing.T, login, email string) models.Principal {
	t.Helper()
	ctx := context.Background()

	s, err := e.accounts.Signup(ctx, signupReq(login, email))
	require.NoError(t, err)
	_, err = e.accounts.ConfirmEmail(ctx, s.ID, e.notifier.last(email))
	require.NoError(t, err)

	session, err := e.accounts.Authenticate(ctx, login, testPassword)
	require.NoError(t, err)
	return session.Principal
}

// adminAccount stores an ENABLED admin directly.
func (e *env) adminAccount(t *testing.T) models.Principal {
	t.Helper()

	hash, err := e.encoder.Hash(testPassword)
	require.NoError(t, err)

	now := e.clock.Now()
	a := &models.Account{
		ID: "admin-1", LoginCode: "adminId1234", PasswordHash: hash, Email: "admin@example.com",
		Status: models.StatusEnabled, Role: models.RoleAdmin, StatusChangedAt: now, CreatedAt: now, UpdatedAt: now,
	}
	_, err = e.store.Accounts(nil).Create(context.Background(), a)
	require.NoError(t, err)

	return models.Principal{AccountID: a.ID, LoginCode: a.LoginCode, Role: a.Role, Status: a.Status}
}

func (e *env) account(t *testing.T, id string) *models.Account {
	t.Helper()
	a, err := e.store.Accounts(nil).GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func encodeImage(t *testing.T, format string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = errors.New("unknown format " + format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}
