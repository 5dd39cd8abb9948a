package grpc

import (
	"context"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

func accountResponse(a *models.AccountSummary) *AccountResponse {
	return &AccountResponse{
		ID:              a.ID,
		LoginCode:       a.LoginCode,
		Name:            a.Name,
		Email:           a.Email,
		Introduction:    a.Introduction,
		Status:          string(a.Status),
		Role:            string(a.Role),
		ProfileImageURL: a.ProfileImageURL,
		StatusChangedAt: a.StatusChangedAt,
	}
}

func principalResponse(p models.Principal) PrincipalResponse {
	return PrincipalResponse{
		AccountID: p.AccountID,
		LoginCode: p.LoginCode,
		Role:      string(p.Role),
		Status:    string(p.Status),
	}
}

// fail logs unexpected errors and converts err to a status.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	if common.Code(err) == common.CodeInternal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "code", common.Code(err))
	}
	return toStatus(err)
}

func (s *GRPCServer) principal(ctx context.Context) (models.Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return models.Principal{}, toStatus(common.ErrInvalidToken)
	}
	return p, nil
}

func (s *GRPCServer) Signup(ctx context.Context, req *SignupRequest) (*AccountResponse, error) {
	a, err := s.accounts.Signup(ctx, models.SignupRequest{
		LoginCode:    req.LoginCode,
		Password:     req.Password,
		Email:        req.Email,
		Name:         req.Name,
		Introduction: req.Introduction,
	})
	if err != nil {
		return nil, s.fail(ctx, "Signup", err)
	}

	s.logger.Info(ctx, "Registered", "account_id", a.ID)
	return accountResponse(a), nil
}

func (s *GRPCServer) ConfirmEmail(ctx context.Context, req *ConfirmEmailRequest) (*AccountResponse, error) {
	a, err := s.accounts.ConfirmEmail(ctx, req.AccountID, req.Code)
	if err != nil {
		return nil, s.fail(ctx, "ConfirmEmail", err)
	}
	return accountResponse(a), nil
}

func (s *GRPCServer) ResendVerificationCode(ctx context.Context, _ *Empty) (*Empty, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.ResendVerificationCode(ctx, p); err != nil {
		return nil, s.fail(ctx, "ResendVerificationCode", err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *AuthenticateRequest) (*AuthenticateResponse, error) {
	session, err := s.accounts.Authenticate(ctx, req.LoginCode, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "Authenticate", err)
	}
	return &AuthenticateResponse{
		AccessToken: session.Token,
		ExpiresAt:   session.ExpiresAt,
		Principal:   principalResponse(session.Principal),
	}, nil
}

func (s *GRPCServer) VerifyToken(ctx context.Context, req *VerifyTokenRequest) (*PrincipalResponse, error) {
	p, err := s.accounts.VerifyToken(ctx, req.Token)
	if err != nil {
		return nil, s.fail(ctx, "VerifyToken", err)
	}
	out := principalResponse(p)
	return &out, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *GetProfileRequest) (*AccountResponse, error) {
	a, err := s.accounts.GetProfile(ctx, req.AccountID)
	if err != nil {
		return nil, s.fail(ctx, "GetProfile", err)
	}
	return accountResponse(a), nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*AccountResponse, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.accounts.UpdateProfile(ctx, p, req.AccountID, models.UpdateProfileRequest{
		Name:            req.Name,
		Email:           req.Email,
		Introduction:    req.Introduction,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return nil, s.fail(ctx, "UpdateProfile", err)
	}
	return accountResponse(a), nil
}

func (s *GRPCServer) Resign(ctx context.Context, req *ResignRequest) (*Empty, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Resign(ctx, p, req.AccountID, req.Password); err != nil {
		return nil, s.fail(ctx, "Resign", err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) AttachProfileImage(ctx context.Context, req *AttachProfileImageRequest) (*AttachProfileImageResponse, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.media.AttachProfileImage(ctx, p, req.AccountID, models.MediaFile{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Data:        req.Data,
	})
	if err != nil {
		return nil, s.fail(ctx, "AttachProfileImage", err)
	}
	return &AttachProfileImageResponse{URL: url}, nil
}

func (s *GRPCServer) AttachPostMedia(ctx context.Context, req *AttachPostMediaRequest) (*PostMediaResponse, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}

	m, err := s.media.AttachPostMedia(ctx, p, req.PostID, models.MediaFile{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Data:        req.Data,
	})
	if err != nil {
		return nil, s.fail(ctx, "AttachPostMedia", err)
	}
	return &PostMediaResponse{
		ID:          m.ID,
		PostID:      m.PostID,
		URL:         m.URL,
		ContentType: m.ContentType,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func (s *GRPCServer) AuthorizePost(ctx context.Context, req *AuthorizePostRequest) (*Empty, error) {
	p, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.posts.AuthorizePost(ctx, p, req.PostID); err != nil {
		return nil, s.fail(ctx, "AuthorizePost", err)
	}
	return &Empty{}, nil
}
