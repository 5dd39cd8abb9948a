package grpc

import (
	"context"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

const goodToken = "good-token"

var testPrincipal = models.Principal{AccountID: "acc-1", LoginCode: "testId1234", Role: models.RoleUser, Status: models.StatusEnabled}

type fakeAccounts struct {
	summary *models.AccountSummary
	session *models.Session
	err     error

	gotSignup models.SignupRequest
	gotUpdate models.UpdateProfileRequest
	gotTarget string
	gotActor  models.Principal
}

func (f *fakeAccounts) Signup(_ context.Context, req models.SignupRequest) (*models.AccountSummary, error) {
	f.gotSignup = req
	return f.summary, f.err
}

func (f *fakeAccounts) ConfirmEmail(_ context.Context, accountID, _ string) (*models.AccountSummary, error) {
	f.gotTarget = accountID
	return f.summary, f.err
}

func (f *fakeAccounts) ResendVerificationCode(_ context.Context, p models.Principal) error {
	f.gotActor = p
	return f.err
}

func (f *fakeAccounts) Authenticate(context.Context, string, string) (*models.Session, error) {
	return f.session, f.err
}

func (f *fakeAccounts) VerifyToken(_ context.Context, token string) (models.Principal, error) {
	if token != goodToken {
		return models.Principal{}, common.ErrInvalidToken
	}
	return testPrincipal, nil
}

func (f *fakeAccounts) GetProfile(_ context.Context, accountID string) (*models.AccountSummary, error) {
	f.gotTarget = accountID
	return f.summary, f.err
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, p models.Principal, targetID string, req models.UpdateProfileRequest) (*models.AccountSummary, error) {
	f.gotActor, f.gotTarget, f.gotUpdate = p, targetID, req
	return f.summary, f.err
}

func (f *fakeAccounts) Resign(_ context.Context, p models.Principal, targetID, _ string) error {
	f.gotActor, f.gotTarget = p, targetID
	return f.err
}

type fakeMedia struct {
	url   string
	media *models.PostMedia
	err   error
	got   models.MediaFile
}

func (f *fakeMedia) AttachProfileImage(_ context.Context, _ models.Principal, _ string, file models.MediaFile) (string, error) {
	f.got = file
	return f.url, f.err
}

func (f *fakeMedia) AttachPostMedia(_ context.Context, _ models.Principal, _ string, file models.MediaFile) (*models.PostMedia, error) {
	f.got = file
	return f.media, f.err
}

type fakeGuard struct {
	err error
}

func (f *fakeGuard) AuthorizePost(context.Context, models.Principal, string) error { return f.err }
