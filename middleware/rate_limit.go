package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
)

type RateLimiter interface {
	AllowRequest(ctx context.Context, viewerId string) (*domain.RateLimitResult, error)
}

func RateLimit(limiter RateLimiter) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			viewer, err := ctx.Viewer()
			if err != nil {
				return errors.WithMessage(err, "rate limit: get viewer")
			}

			result, err := limiter.AllowRequest(ctx.Context(), viewer.ViewerId)
			if err != nil {
				return errors.WithMessage(err, "rate limit: allow request")
			}
			if !result.Allow {
				retryAfterSec := int64((result.RetryAfter + time.Second - 1) / time.Second)
				rejection := domain.Rejection{
					Stage:  domain.StageRateLimit,
					Reason: fmt.Sprintf("rate limit has been reached for viewer '%s'", viewer.ViewerId),
				}
				return httperrors.New(
					http.StatusTooManyRequests,
					fmt.Sprintf("rate limit has been reached, try after %dms", result.RetryAfter.Milliseconds()),
					rejection,
				).WithHeader("Retry-After", strconv.FormatInt(retryAfterSec, 10))
			}

			return next.Handle(ctx)
		})
	}
}
