package handler

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
	"isp-image-guard-service/routes"
)

type Prober interface {
	Verify(ctx context.Context, payload domain.Payload) (*domain.ProbeResult, error)
}

type RenderedImageStore interface {
	Set(image domain.RenderedImage)
}

type Render struct {
	prober     Prober
	store      RenderedImageStore
	pathPrefix string
	container  string
}

func NewRender(prober Prober, store RenderedImageStore, pathPrefix string, container string) Render {
	return Render{
		prober:     prober,
		store:      store,
		pathPrefix: pathPrefix,
		container:  container,
	}
}

func (h Render) Handle(ctx *request.Context) error {
	payload, err := ctx.Payload()
	if err != nil {
		return errors.WithMessage(err, "render: get payload")
	}

	result, err := h.prober.Verify(ctx.Context(), *payload)
	if err != nil {
		return errors.WithMessage(err, "render: verify payload")
	}
	if !result.Verified {
		rejection := domain.Rejection{Stage: result.Stage, Reason: result.Reason, Digest: result.Digest}
		if result.Stage == domain.StageSlot {
			return httperrors.New(http.StatusServiceUnavailable, "validation is overloaded, try again later", rejection)
		}
		return httperrors.New(http.StatusUnprocessableEntity, "image did not pass validation", rejection)
	}

	h.store.Set(domain.RenderedImage{
		Digest:      result.Digest,
		Format:      result.Format,
		ContentType: result.ContentType,
		Width:       result.Width,
		Height:      result.Height,
		Data:        result.Data,
	})

	return writeJson(ctx.ResponseWriter(), domain.RenderResponse{
		Container:   h.container,
		ContentType: result.ContentType,
		Format:      result.Format,
		Width:       result.Width,
		Height:      result.Height,
		SizeInBytes: len(result.Data),
		Digest:      result.Digest,
		ImagePath:   routes.ImagePath(h.pathPrefix, result.Digest),
	})
}
