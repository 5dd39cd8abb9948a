package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

type ctxKey string

const principalKey ctxKey = "principal"

// publicMethods are served without a session token.
var publicMethods = map[string]struct{}{
	FullMethod("Signup"):       {},
	FullMethod("ConfirmEmail"): {},
	FullMethod("Authenticate"): {},
	FullMethod("VerifyToken"):  {},
	FullMethod("GetProfile"):   {},
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal resolved by the interceptor.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// tokenFromMetadata reads access_token, falling back to a bearer
// authorization header.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 && v[0] != "" {
		return v[0]
	}
	if v := md.Get(common.AuthorizationHeaderName); len(v) > 0 {
		const prefix = "bearer "
		if len(v[0]) > len(prefix) && strings.EqualFold(v[0][:len(prefix)], prefix) {
			return strings.TrimSpace(v[0][len(prefix):])
		}
	}
	return ""
}

func (s *GRPCServer) principalInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	token := tokenFromMetadata(ctx)
	if token == "" {
		return nil, toStatus(common.ErrInvalidToken)
	}

	p, err := s.accounts.VerifyToken(ctx, token)
	if err != nil {
		s.logger.Info(ctx, "rejected session token", "method", info.FullMethod, "error", err)
		return nil, toStatus(err)
	}

	return handler(WithPrincipal(ctx, p), req)
}
