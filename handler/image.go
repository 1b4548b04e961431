package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
)

type RenderedImageSource interface {
	Get(digest string) (*domain.RenderedImage, bool)
}

type Image struct {
	store RenderedImageSource
}

func NewImage(store RenderedImageSource) Image {
	return Image{
		store: store,
	}
}

func (h Image) Handle(ctx *request.Context) error {
	digest := mux.Vars(ctx.Request())["digest"]
	image, ok := h.store.Get(digest)
	if !ok {
		return httperrors.New(
			http.StatusNotFound,
			"image is not rendered or has expired",
			errors.Errorf("image: digest '%s' not found", digest),
		)
	}

	writer := ctx.ResponseWriter()
	writer.Header().Set("Content-Type", image.ContentType)
	writer.Header().Set("X-Content-Type-Options", "nosniff")
	writer.Header().Set("Cache-Control", "no-store")
	writer.Header().Set("Content-Security-Policy", "default-src 'none'")
	_, err := writer.Write(image.Data)
	if err != nil {
		return errors.WithMessage(err, "image: write response")
	}

	return nil
}
