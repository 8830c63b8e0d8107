package rpc

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/settlewise/internal/calculator"
	"github.com/mmynk/settlewise/internal/service"
	"github.com/mmynk/settlewise/internal/storage"
)

var errInvalidTransfer = errors.New("transfers need a payer, a payee and a positive amount")

func errMissing(field string) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s is required", field))
}

// toConnectError maps engine errors to Connect codes. Only Unavailable is
// worth retrying with the same request.
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, service.ErrStalePlan):
		code = connect.CodeAborted
	case errors.Is(err, service.ErrCommitFailed):
		code = connect.CodeUnavailable
	case errors.Is(err, service.ErrNetworkNotFound), errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, calculator.ErrUnbalancedLedger):
		code = connect.CodeInternal
	case errors.Is(err, calculator.ErrSplitMismatch),
		errors.Is(err, calculator.ErrUnknownMember),
		errors.Is(err, calculator.ErrCurrencyConflict):
		code = connect.CodeFailedPrecondition
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
