package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "newsfeed.identity.v1.AccountService"

// AccountServiceServer is the transport surface of the identity core.
type AccountServiceServer interface {
	Signup(context.Context, *SignupRequest) (*AccountResponse, error)
	ConfirmEmail(context.Context, *ConfirmEmailRequest) (*AccountResponse, error)
	ResendVerificationCode(context.Context, *Empty) (*Empty, error)
	Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error)
	VerifyToken(context.Context, *VerifyTokenRequest) (*PrincipalResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*AccountResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*AccountResponse, error)
	Resign(context.Context, *ResignRequest) (*Empty, error)
	AttachProfileImage(context.Context, *AttachProfileImageRequest) (*AttachProfileImageResponse, error)
	AttachPostMedia(context.Context, *AttachPostMediaRequest) (*PostMediaResponse, error)
	AuthorizePost(context.Context, *AuthorizePostRequest) (*Empty, error)
}

// FullMethod returns the "/service/method" path of an RPC.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](name string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AccountServiceServer)

			h := func(ctx context.Context, req any) (any, error) {
				out, err := call(s, ctx, req.(*Req))
				if err != nil {
					return nil, err
				}
				return out, nil
			}
			if interceptor == nil {
				return h(ctx, in)
			}
			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}, h)
		},
	}
}

// ServiceDesc describes AccountService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Signup", AccountServiceServer.Signup),
		unary("ConfirmEmail", AccountServiceServer.ConfirmEmail),
		unary("ResendVerificationCode", AccountServiceServer.ResendVerificationCode),
		unary("Authenticate", AccountServiceServer.Authenticate),
		unary("VerifyToken", AccountServiceServer.VerifyToken),
		unary("GetProfile", AccountServiceServer.GetProfile),
		unary("UpdateProfile", AccountServiceServer.UpdateProfile),
		unary("Resign", AccountServiceServer.Resign),
		unary("AttachProfileImage", AccountServiceServer.AttachProfileImage),
		unary("AttachPostMedia", AccountServiceServer.AttachPostMedia),
		unary("AuthorizePost", AccountServiceServer.AuthorizePost),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "newsfeed/identity/v1/account_service.json",
}
