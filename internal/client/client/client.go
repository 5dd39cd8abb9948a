// Package client is a thin gRPC client for the newsfeed identity service.
// It speaks the server's JSON codec and attaches the session token of the
// last successful Authenticate to every call.
package client

import (
	"context"
	"sync"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	gs "github.com/dmitrijs2005/wildcard-newsfeed/internal/server/grpc"
)

type NewsfeedClient struct {
	conn *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *NewsfeedClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := c.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// New dials addr without transport security.
func New(addr string, opts ...grpc.DialOption) (*NewsfeedClient, error) {
	c := &NewsfeedClient{}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(gs.Codec{})),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *NewsfeedClient) Close() error { return c.conn.Close() }

func (c *NewsfeedClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *NewsfeedClient) setToken(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = t
}

// LoggedIn reports whether a session token is held.
func (c *NewsfeedClient) LoggedIn() bool { return c.token() != "" }

// Logout forgets the session token. Tokens are stateless, so nothing is
// sent to the server.
func (c *NewsfeedClient) Logout() { c.setToken("") }

func (c *NewsfeedClient) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, gs.FullMethod(method), req, resp)
}

func (c *NewsfeedClient) Signup(ctx context.Context, req *gs.SignupRequest) (*gs.AccountResponse, error) {
	var out gs.AccountResponse
	if err := c.invoke(ctx, "Signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NewsfeedClient) ConfirmEmail(ctx context.Context, accountID, code string) (*gs.AccountResponse, error) {
	var out gs.AccountResponse
	if err := c.invoke(ctx, "ConfirmEmail", &gs.ConfirmEmailRequest{AccountID: accountID, Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NewsfeedClient) ResendVerificationCode(ctx context.Context) error {
	return c.invoke(ctx, "ResendVerificationCode", &gs.Empty{}, &gs.Empty{})
}

// Authenticate signs in and keeps the returned token for later calls.
func (c *NewsfeedClient) Authenticate(ctx context.Context, loginCode, password string) (*gs.AuthenticateResponse, error) {
	var out gs.AuthenticateResponse
	if err := c.invoke(ctx, "Authenticate", &gs.AuthenticateRequest{LoginCode: loginCode, Password: password}, &out); err != nil {
		return nil, err
	}
	c.setToken(out.AccessToken)
	return &out, nil
}

// WhoAmI verifies the held token.
func (c *NewsfeedClient) WhoAmI(ctx context.Context) (*gs.PrincipalResponse, error) {
	var out gs.PrincipalResponse
	if err := c.invoke(ctx, "VerifyToken", &gs.VerifyTokenRequest{Token: c.token()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NewsfeedClient) GetProfile(ctx context.Context, accountID string) (*gs.AccountResponse, error) {
	var out gs.AccountResponse
	if err := c.invoke(ctx, "GetProfile", &gs.GetProfileRequest{AccountID: accountID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NewsfeedClient) UpdateProfile(ctx context.Context, req *gs.UpdateProfileRequest) (*gs.AccountResponse, error) {
	var out gs.AccountResponse
	if err := c.invoke(ctx, "UpdateProfile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resign disables the account and drops the token when it was the caller's own.
func (c *NewsfeedClient) Resign(ctx context.Context, accountID, password string) error {
	if err := c.invoke(ctx, "Resign", &gs.ResignRequest{AccountID: accountID, Password: password}, &gs.Empty{}); err != nil {
		return err
	}
	if p, err := c.WhoAmI(ctx); err == nil && p.AccountID == accountID {
		c.Logout()
	}
	return nil
}

func (c *NewsfeedClient) AttachProfileImage(ctx context.Context, req *gs.AttachProfileImageRequest) (string, error) {
	var out gs.AttachProfileImageResponse
	if err := c.invoke(ctx, "AttachProfileImage", req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// ErrorReason returns the stable error code carried by a failed call, or
// common.CodeInternal when none is attached.
func ErrorReason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return common.CodeInternal
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.Reason
		}
	}
	return common.CodeInternal
}

// FieldErrors returns the validation violations of a failed call keyed by
// field name.
func FieldErrors(err error) map[string]string {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	out := map[string]string{}
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok {
			for _, v := range br.GetFieldViolations() {
				out[v.GetField()] = v.GetDescription()
			}
		}
	}
	return out
}
