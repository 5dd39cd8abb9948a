package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/client/client"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/client/config"
	gs "github.com/dmitrijs2005/wildcard-newsfeed/internal/server/grpc"
)

// API is the part of client.NewsfeedClient the CLI uses.
type API interface {
	Signup(ctx context.Context, req *gs.SignupRequest) (*gs.AccountResponse, error)
	ConfirmEmail(ctx context.Context, accountID, code string) (*gs.AccountResponse, error)
	ResendVerificationCode(ctx context.Context) error
	Authenticate(ctx context.Context, loginCode, password string) (*gs.AuthenticateResponse, error)
	WhoAmI(ctx context.Context) (*gs.PrincipalResponse, error)
	GetProfile(ctx context.Context, accountID string) (*gs.AccountResponse, error)
	UpdateProfile(ctx context.Context, req *gs.UpdateProfileRequest) (*gs.AccountResponse, error)
	Resign(ctx context.Context, accountID, password string) error
	AttachProfileImage(ctx context.Context, req *gs.AttachProfileImageRequest) (string, error)
	LoggedIn() bool
	Logout()
	Close() error
}

type App struct {
	config    *config.Config
	api       API
	reader    *bufio.Reader
	out       io.Writer
	accountID string
	loginCode string
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.New(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	fmt.Fprintln(a.out, "Newsfeed account CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) status() string {
	if a.loginCode == "" {
		return "anonymous"
	}
	return a.loginCode
}

func (a *App) isLoggedIn() bool { return a.api.LoggedIn() }

func (a *App) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithTimeout(ctx, 10*time.Second)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
