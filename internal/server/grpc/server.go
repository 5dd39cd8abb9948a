package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

// AccountService is the account lifecycle surface the transport calls into.
type AccountService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AccountSummary, error)
	ConfirmEmail(ctx context.Context, accountID, code string) (*models.AccountSummary, error)
	ResendVerificationCode(ctx context.Context, p models.Principal) error
	Authenticate(ctx context.Context, loginCode, password string) (*models.Session, error)
	VerifyToken(ctx context.Context, token string) (models.Principal, error)
	GetProfile(ctx context.Context, accountID string) (*models.AccountSummary, error)
	UpdateProfile(ctx context.Context, p models.Principal, targetID string, req models.UpdateProfileRequest) (*models.AccountSummary, error)
	Resign(ctx context.Context, p models.Principal, targetID, password string) error
}

type MediaService interface {
	AttachProfileImage(ctx context.Context, p models.Principal, targetID string, f models.MediaFile) (string, error)
	AttachPostMedia(ctx context.Context, p models.Principal, postID string, f models.MediaFile) (*models.PostMedia, error)
}

type PostGuard interface {
	AuthorizePost(ctx context.Context, p models.Principal, postID string) error
}

type GRPCServer struct {
	address   string
	accounts  AccountService
	media     MediaService
	posts     PostGuard
	logger    logging.Logger
	maxRecvSz int
}

// NewGRPCServer builds the transport. maxUpload sizes the receive limit so
// an upload at the configured maximum still fits after base64 encoding.
func NewGRPCServer(a string, l logging.Logger, as AccountService, ms MediaService, pg PostGuard, maxUpload int64) (*GRPCServer, error) {
	recv := 4 << 20
	if n := int(maxUpload/3*4) + 64<<10; n > recv {
		recv = n
	}
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		accounts:  as,
		media:     ms,
		posts:     pg,
		maxRecvSz: recv,
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.MaxRecvMsgSize(s.maxRecvSz),
		grpc.ChainUnaryInterceptor(s.principalInterceptor),
	)
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
