package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
)

const (
	viewerTokenHeader = "x-viewer-token"
)

type Identifier interface {
	VerifyViewer(ctx context.Context, token string) (*domain.VerifyViewerResponse, error)
}

func Identify(identifier Identifier) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			token := strings.TrimSpace(ctx.Param(viewerTokenHeader))
			if token == "" {
				return httperrors.New(
					http.StatusUnauthorized,
					"viewer token required",
					errors.New("identify: viewer token required"),
				)
			}

			resp, err := identifier.VerifyViewer(ctx.Context(), token)
			if err != nil {
				return errors.WithMessage(err, "identify: verify viewer")
			}
			if !resp.Verified {
				return httperrors.New(
					http.StatusUnauthorized,
					"invalid viewer token",
					errors.WithMessage(errors.New(resp.ErrorReason), "identify: verify viewer"),
				)
			}
			ctx.Identify(request.Viewer(*resp.Viewer))

			return next.Handle(ctx)
		})
	}
}
