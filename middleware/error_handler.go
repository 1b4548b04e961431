package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
)

type HttpError interface {
	WriteError(w http.ResponseWriter) error
}

func ErrorHandler(logger log.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			err := next.Handle(ctx)
			if err == nil {
				return nil
			}

			// отказ конвейера логируется как штатное событие
			rejection := domain.Rejection{}
			if errors.As(err, &rejection) {
				logger.Info(ctx.Context(), err)
			} else {
				logger.Error(ctx.Context(), err)
			}

			httpErr, ok := err.(HttpError)
			if ok {
				return httpErr.WriteError(ctx.ResponseWriter())
			}

			return httperrors.
				New(http.StatusInternalServerError, "internal service error", err).
				WriteError(ctx.ResponseWriter())
		})
	}
}
