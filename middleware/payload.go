package middleware

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
)

type PayloadValidator interface {
	Validate(req domain.RenderRequest) domain.PayloadCheck
}

func Payload(validator PayloadValidator, guardedField string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			body, err := io.ReadAll(ctx.Request().Body)
			if err != nil {
				maxBytesErr := &http.MaxBytesError{}
				if errors.As(err, &maxBytesErr) {
					rejection := domain.Rejection{
						Stage:  domain.StageSize,
						Reason: fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit),
					}
					return httperrors.New(http.StatusRequestEntityTooLarge, "image is too large", rejection)
				}
				return errors.WithMessage(err, "payload: read request body")
			}

			req := domain.RenderRequest{}
			err = json.Unmarshal(body, &req)
			if err != nil {
				rejection := domain.Rejection{
					Stage:  domain.StageShape,
					Reason: fmt.Sprintf("malformed request envelope: %s", err),
				}
				return httperrors.New(http.StatusBadRequest, "malformed request envelope", rejection)
			}

			if req.Field != guardedField {
				return httperrors.New(
					http.StatusNotFound,
					fmt.Sprintf("field '%s' is not guarded", req.Field),
					errors.Errorf("payload: field '%s' is not guarded", req.Field),
				)
			}

			check := validator.Validate(req)
			if !check.Ok {
				rejection := domain.Rejection{Stage: check.Stage, Reason: check.Reason}
				if check.Stage == domain.StageSize {
					return httperrors.New(http.StatusRequestEntityTooLarge, "image is too large", rejection)
				}
				return httperrors.New(http.StatusBadRequest, "invalid image content", rejection)
			}
			ctx.SetPayload(check.Payload)

			return next.Handle(ctx)
		})
	}
}
