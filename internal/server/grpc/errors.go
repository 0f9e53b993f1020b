package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var statusMappings = []struct {
	target error
	code   codes.Code
}{
	{common.ErrTokenNotFound, codes.NotFound},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrInvalidTokenConfiguration, codes.FailedPrecondition},
	{common.ErrAccountInactive, codes.PermissionDenied},
	{common.ErrorForbidden, codes.PermissionDenied},
	{common.ErrSessionConflict, codes.Aborted},
	{common.ErrAlreadyExists, codes.AlreadyExists},
	{common.ErrorValidation, codes.InvalidArgument},
}

// toStatus converts a service error into a gRPC status. Unknown errors are
// logged and reported as codes.Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	for _, m := range statusMappings {
		if errors.Is(err, m.target) {
			return status.Error(m.code, m.target.Error())
		}
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
