package handler

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/httperrors"
	"isp-image-guard-service/request"
)

type Journal interface {
	Recent(limit int) []domain.RejectionEvent
}

type Rejections struct {
	journal Journal
}

func NewRejections(journal Journal) Rejections {
	return Rejections{
		journal: journal,
	}
}

func (h Rejections) Handle(ctx *request.Context) error {
	limit := 0
	rawLimit := ctx.Param("limit")
	if rawLimit != "" {
		parsedLimit, err := strconv.Atoi(rawLimit)
		if err != nil {
			return httperrors.New(
				http.StatusBadRequest,
				"limit must be an integer",
				errors.WithMessage(err, "rejections: parse limit"),
			)
		}
		limit = parsedLimit
	}

	return writeJson(ctx.ResponseWriter(), h.journal.Recent(limit))
}
