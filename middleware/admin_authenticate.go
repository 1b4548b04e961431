package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"

	"github.com/pkg/errors"
)

const (
	adminSecretHeader = "x-admin-secret"
)

func AdminAuthenticate(secret string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			if secret == "" {
				return httperrors.New(
					http.StatusForbidden,
					"admin endpoints are disabled",
					errors.New("admin authenticate: no secret configured"),
				)
			}

			providedSecret := strings.TrimSpace(ctx.Request().Header.Get(adminSecretHeader))
			if subtle.ConstantTimeCompare([]byte(providedSecret), []byte(secret)) != 1 {
				return httperrors.New(
					http.StatusUnauthorized,
					"invalid admin secret",
					errors.New("admin authenticate: secret mismatch"),
				)
			}
			ctx.AuthenticateAdmin()

			return next.Handle(ctx)
		})
	}
}
