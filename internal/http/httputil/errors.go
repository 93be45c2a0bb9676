package httputil

import (
	"context"
	"errors"

	"github.com/hxuan190/price-oracle/internal/common"
	"github.com/hxuan190/price-oracle/internal/domain"
	"github.com/hxuan190/price-oracle/internal/services/decimals"
	"github.com/hxuan190/price-oracle/internal/services/market"
	"github.com/hxuan190/price-oracle/internal/services/router"
)

// ToHttpError maps service errors onto API errors; unknown errors become 500s.
func ToHttpError(err error) *common.HttpError {
	var httpErr *common.HttpError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, domain.ErrInvalidVenueSelector), errors.Is(err, domain.ErrUnknownVenue):
		return common.HTTPErrorBadRequest(err.Error())
	case errors.Is(err, router.ErrNoRoute), errors.Is(err, market.ErrPoolNotFound):
		return common.HTTPErrorNotFound(err.Error())
	case errors.Is(err, market.ErrUnknownToken),
		errors.Is(err, decimals.ErrDecimalsOutOfRange),
		errors.Is(err, decimals.ErrAmountOutOfRange),
		errors.Is(err, decimals.ErrOverflow):
		return common.HTTPErrorUnprocessable(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return common.HTTPErrorInternalError("request timed out")
	default:
		return common.HTTPErrorInternalError(err.Error())
	}
}
