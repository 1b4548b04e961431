package service

import (
	"fmt"
	"strings"

	"isp-image-guard-service/conf"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/helpers"
)

const (
	dataUriPrefix    = "data:"
	base64UriMarker  = ";base64,"
	imageMediaPrefix = "image/"
)

type Payload struct {
	maxSizeInBytes int
}

func NewPayload(config conf.Guard) Payload {
	return Payload{
		maxSizeInBytes: int(config.MaxImageSizeInKb) * 1024, //nolint:mnd
	}
}

// nolint:cyclop
func (s Payload) Validate(req domain.RenderRequest) domain.PayloadCheck {
	if strings.TrimSpace(req.RecordId) == "" {
		return rejectedPayload(domain.StageShape, "empty record id")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return rejectedPayload(domain.StageShape, "empty content")
	}

	declaredFormat := ""
	encoded := content
	if strings.HasPrefix(content, dataUriPrefix) {
		mediaType, payload, found := strings.Cut(content[len(dataUriPrefix):], base64UriMarker)
		if !found {
			return rejectedPayload(domain.StageShape, "data uri is not base64-encoded")
		}
		if !strings.HasPrefix(mediaType, imageMediaPrefix) {
			return rejectedPayload(domain.StageShape, "data uri is not an image")
		}
		declaredFormat = normalizeFormat(strings.TrimPrefix(mediaType, imageMediaPrefix))
		if declaredFormat == "" || strings.ContainsAny(declaredFormat, "; ,") {
			return rejectedPayload(domain.StageShape, "unexpected media type in data uri")
		}
		encoded = payload
	}

	padding, ok := helpers.ScanBase64([]byte(encoded))
	if !ok {
		return rejectedPayload(domain.StageShape, "content is not canonical base64")
	}

	estimatedSize := helpers.DecodedSize(len(encoded), padding)
	if estimatedSize > s.maxSizeInBytes {
		return domain.PayloadCheck{
			Stage:  domain.StageSize,
			Reason: fmt.Sprintf("estimated size %d exceeds limit %d", estimatedSize, s.maxSizeInBytes),
		}
	}

	return domain.PayloadCheck{
		Ok: true,
		Payload: &domain.Payload{
			RecordId:       req.RecordId,
			Field:          req.Field,
			Encoded:        encoded,
			DeclaredFormat: declaredFormat,
			EstimatedSize:  estimatedSize,
		},
	}
}

func rejectedPayload(stage string, reason string) domain.PayloadCheck {
	return domain.PayloadCheck{
		Stage:  stage,
		Reason: reason,
	}
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "jpg" {
		return "jpeg"
	}
	return format
}
