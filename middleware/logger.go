package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/endpoint/buffer"
	"github.com/txix-open/isp-kit/log"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
)

type scSource interface {
	StatusCode() int
}

type writerWrapper struct {
	http.ResponseWriter

	statusCode int
}

func (w *writerWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	upstream, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("writerWrapper: upstream writer doesn't implement Hijack")
	}
	return upstream.Hijack()
}

func (w *writerWrapper) StatusCode() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *writerWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func Logger(
	logger log.Logger,
	enableRequestLogging bool,
	enableBodyLogging bool,
	skipBodyLoggingEndpointPrefixes []string,
) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			if !enableRequestLogging {
				return next.Handle(ctx)
			}

			r := ctx.Request()

			logBodyFromCurrenRequest := enableBodyLogging
			if logBodyFromCurrenRequest {
				for _, prefix := range skipBodyLoggingEndpointPrefixes {
					if strings.HasPrefix(ctx.Endpoint(), prefix) {
						logBodyFromCurrenRequest = false
						break
					}
				}
			}

			var scSrc scSource
			var buf *buffer.Buffer
			if logBodyFromCurrenRequest {
				buf = buffer.Acquire(ctx.ResponseWriter())
				defer buffer.Release(buf)

				err := buf.ReadRequestBody(r.Body)
				if err != nil {
					maxBytesErr := &http.MaxBytesError{}
					if errors.As(err, &maxBytesErr) {
						// лимит тела срабатывает выше ErrorHandler, ответ пишется на месте
						return httperrors.New(
							http.StatusRequestEntityTooLarge,
							"request body is too large",
							err,
						).WriteError(ctx.ResponseWriter())
					}
					return errors.WithMessage(err, "logger: read request body for logging")
				}
				err = r.Body.Close()
				if err != nil {
					return errors.WithMessage(err, "logger: close request reader")
				}
				r.Body = io.NopCloser(bytes.NewBuffer(buf.RequestBody()))

				scSrc = buf
				ctx.SetResponseWriter(buf)
			} else {
				writer := &writerWrapper{ResponseWriter: ctx.ResponseWriter()}
				scSrc = writer
				ctx.SetResponseWriter(writer)
			}

			path := r.URL.Path
			err := next.Handle(ctx)

			viewer, _ := ctx.Viewer()
			fields := []log.Field{
				log.String("httpMethod", r.Method),
				log.String("remoteAddr", r.RemoteAddr),
				log.String("xForwardedFor", r.Header.Get("X-Forwarded-For")),
				log.Int("statusCode", scSrc.StatusCode()),
				log.String("path", path),
				log.String("endpoint", ctx.Endpoint()),
				log.String("viewerId", viewer.ViewerId),
			}

			if logBodyFromCurrenRequest {
				fields = append(fields, log.ByteString("request", buf.RequestBody()))
				fields = append(fields, log.ByteString("response", buf.ResponseBody()))
			}
			logger.Debug(ctx.Context(), "log request", fields...)

			return err
		})
	}
}
