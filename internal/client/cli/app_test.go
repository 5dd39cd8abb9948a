package cli

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	gs "github.com/dmitrijs2005/wildcard-newsfeed/internal/server/grpc"
)

type fakeAPI struct {
	loggedIn  bool
	err       error
	gotSignup *gs.SignupRequest
	gotUpdate *gs.UpdateProfileRequest
	gotCode   string
	resigned  string
	gotImage  *gs.AttachProfileImageRequest
}

func (f *fakeAPI) Signup(_ context.Context, req *gs.SignupRequest) (*gs.AccountResponse, error) {
	f.gotSignup = req
	if f.err != nil {
		return nil, f.err
	}
	return &gs.AccountResponse{ID: "acc-1", LoginCode: req.LoginCode, Email: req.Email, Status: "UNAUTHORIZED"}, nil
}

func (f *fakeAPI) ConfirmEmail(_ context.Context, id, code string) (*gs.AccountResponse, error) {
	f.gotCode = id + "/" + code
	return &gs.AccountResponse{ID: id, LoginCode: "testId1234", Status: "ENABLED"}, f.err
}

func (f *fakeAPI) ResendVerificationCode(context.Context) error { return f.err }

func (f *fakeAPI) Authenticate(_ context.Context, login, _ string) (*gs.AuthenticateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.loggedIn = true
	return &gs.AuthenticateResponse{
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
		Principal:   gs.PrincipalResponse{AccountID: "acc-1", LoginCode: login, Role: "USER", Status: "ENABLED"},
	}, nil
}

func (f *fakeAPI) WhoAmI(context.Context) (*gs.PrincipalResponse, error) {
	return &gs.PrincipalResponse{AccountID: "acc-1", LoginCode: "testId1234", Role: "USER", Status: "ENABLED"}, f.err
}

func (f *fakeAPI) GetProfile(_ context.Context, id string) (*gs.AccountResponse, error) {
	return &gs.AccountResponse{ID: id, LoginCode: "testId1234", Email: "test@gmail.com", Status: "ENABLED", Introduction: "hello"}, f.err
}

func (f *fakeAPI) UpdateProfile(_ context.Context, req *gs.UpdateProfileRequest) (*gs.AccountResponse, error) {
	f.gotUpdate = req
	return &gs.AccountResponse{ID: req.AccountID, LoginCode: "testId1234"}, f.err
}

func (f *fakeAPI) Resign(_ context.Context, id, _ string) error {
	f.resigned = id
	return f.err
}

func (f *fakeAPI) AttachProfileImage(_ context.Context, req *gs.AttachProfileImageRequest) (string, error) {
	f.gotImage = req
	if f.err != nil {
		return "", f.err
	}
	return "https://media.example/profile/" + req.AccountID, nil
}

func (f *fakeAPI) LoggedIn() bool { return f.loggedIn }
func (f *fakeAPI) Logout()        { f.loggedIn = false }
func (f *fakeAPI) Close() error   { return nil }

func newTestApp(api *fakeAPI, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{api: api, reader: bufio.NewReader(strings.NewReader(input)), out: &out}, &out
}

func stubPassword(t *testing.T, pw string) {
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func TestApp_SignupThenConfirm(t *testing.T) {
	stubPassword(t, "currentPWD999!")
	api := &fakeAPI{}
	app, out := newTestApp(api, "testId1234\ntest@gmail.com\n123456\n")

	require.NoError(t, app.Signup(context.Background()))
	assert.Equal(t, &gs.SignupRequest{LoginCode: "testId1234", Password: "currentPWD999!", Email: "test@gmail.com"}, api.gotSignup)
	assert.Contains(t, out.String(), "verification code was sent")

	require.NoError(t, app.Confirm(context.Background()))
	assert.Equal(t, "acc-1/123456", api.gotCode)
	assert.Contains(t, out.String(), "is now ENABLED")
}

func TestApp_LoginUpdateResign(t *testing.T) {
	stubPassword(t, "currentPWD999!")
	api := &fakeAPI{}
	app, out := newTestApp(api, "testId1234\nNew Name\n\nline one\n\nyes\n")
	ctx := context.Background()

	require.NoError(t, app.Login(ctx))
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, "testId1234", app.status())

	require.NoError(t, app.Update(ctx))
	assert.Equal(t, &gs.UpdateProfileRequest{
		AccountID: "acc-1", Name: "New Name", Introduction: "line one", CurrentPassword: "currentPWD999!",
	}, api.gotUpdate)

	require.NoError(t, app.Resign(ctx))
	assert.Equal(t, "acc-1", api.resigned)
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "anonymous", app.status())
	assert.Contains(t, out.String(), "Account disabled")
}

func TestApp_ResignCancelled(t *testing.T) {
	api := &fakeAPI{loggedIn: true}
	app, out := newTestApp(api, "no\n")

	require.NoError(t, app.Resign(context.Background()))
	assert.Empty(t, api.resigned)
	assert.Contains(t, out.String(), "Cancelled")
}

func TestApp_PrintsValidationErrors(t *testing.T) {
	stubPassword(t, "short")

	st, err := status.New(codes.InvalidArgument, "request validation failed").WithDetails(
		&errdetails.ErrorInfo{Reason: "VALIDATION_FAILED", Domain: gs.ErrorDomain},
		&errdetails.BadRequest{FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: "password", Description: "Size: password must be at least 10 characters"},
			{Field: "loginCode", Description: "Pattern: login code may contain only upper and lower case letters and digits"},
		}},
	)
	require.NoError(t, err)

	api := &fakeAPI{err: st.Err()}
	app, out := newTestApp(api, "bad login\ntest@gmail.com\n")

	assert.Error(t, app.Signup(context.Background()))
	got := out.String()
	assert.Contains(t, got, "Error [VALIDATION_FAILED]: request validation failed")
	assert.Less(t, strings.Index(got, "loginCode:"), strings.Index(got, "password:"))
}

func TestApp_ProfileUsage(t *testing.T) {
	app, out := newTestApp(&fakeAPI{}, "")

	require.NoError(t, app.Profile(context.Background(), nil))
	assert.Contains(t, out.String(), "Usage: profile")

	require.NoError(t, app.Profile(context.Background(), []string{"acc-9"}))
	assert.Contains(t, out.String(), "about: hello")
}

func TestApp_Avatar(t *testing.T) {
	api := &fakeAPI{loggedIn: true}
	app, out := newTestApp(api, "")
	app.accountID = "acc-1"

	p := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(p, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	require.NoError(t, app.Avatar(context.Background(), []string{p}))
	require.NotNil(t, api.gotImage)
	assert.Equal(t, "acc-1", api.gotImage.AccountID)
	assert.Equal(t, "me.png", api.gotImage.Filename)
	assert.Equal(t, "image/png", api.gotImage.ContentType)
	assert.Contains(t, out.String(), "https://media.example/profile/acc-1")
}

func TestApp_AvatarMissingFile(t *testing.T) {
	api := &fakeAPI{loggedIn: true}
	app, out := newTestApp(api, "")

	assert.Error(t, app.Avatar(context.Background(), []string{filepath.Join(t.TempDir(), "none.png")}))
	assert.Nil(t, api.gotImage)
	assert.Contains(t, out.String(), "Error:")

	require.NoError(t, app.Avatar(context.Background(), nil))
	assert.Contains(t, out.String(), "Usage: avatar")
}
