package grpc

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/validator"
)

// ErrorDomain is reported in the ErrorInfo detail of every failed call.
const ErrorDomain = "newsfeed.identity"

var grpcCodes = map[string]codes.Code{
	common.CodeValidationFailed:        codes.InvalidArgument,
	common.CodeConflict:                codes.AlreadyExists,
	common.CodeNotFound:                codes.NotFound,
	common.CodeVerificationNotFound:    codes.NotFound,
	common.CodeVerificationExpired:     codes.FailedPrecondition,
	common.CodeVerificationUsed:        codes.FailedPrecondition,
	common.CodeInvalidCredentials:      codes.Unauthenticated,
	common.CodeTokenInvalid:            codes.Unauthenticated,
	common.CodeTokenExpired:            codes.Unauthenticated,
	common.CodeForbidden:               codes.PermissionDenied,
	common.CodeUnsupportedMediaType:    codes.InvalidArgument,
	common.CodeStorageUnavailable:      codes.Unavailable,
	common.CodeNotificationUnavailable: codes.Unavailable,
	common.CodeTimeout:                 codes.DeadlineExceeded,
	common.CodeInternal:                codes.Internal,
}

// toStatus converts a service error into a gRPC status. The message is the
// public one from common.Message; the stable code travels as ErrorInfo and
// validation violations as BadRequest.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := common.Code(err)
	st := status.New(grpcCodes[code], common.Message(err))

	details := []protoadapt.MessageV1{&errdetails.ErrorInfo{
		Reason:   code,
		Domain:   ErrorDomain,
		Metadata: map[string]string{"retryable": boolString(common.IsRetryable(err))},
	}}

	var ve *validator.Error
	if errors.As(err, &ve) {
		br := &errdetails.BadRequest{}
		for _, v := range ve.Violations {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: v.Group.String() + ": " + v.Message,
			})
		}
		details = append(details, br)
	}

	withDetails, derr := st.WithDetails(details...)
	if derr != nil {
		return st.Err()
	}
	return withDetails.Err()
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
