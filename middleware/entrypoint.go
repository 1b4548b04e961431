package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"isp-image-guard-service/request"
)

func Entrypoint(maxRequestBodySize int64, next Handler, logger log.Logger, endpoint string) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(writer, req.Body, maxRequestBodySize)
		ctx := request.NewContext(req, writer, endpoint)
		err := next.Handle(ctx)
		if err != nil {
			logger.Error(req.Context(), errors.WithMessage(err, "uncaught error"))
		}
	})
}
