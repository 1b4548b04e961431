package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"isp-image-guard-service/conf"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/service"
)

func TestPayloadValidate(t *testing.T) {
	t.Parallel()

	srv := service.NewPayload(conf.Guard{
		MaxImageSizeInKb: 1,
	})

	tests := []struct {
		name           string
		request        domain.RenderRequest
		ok             bool
		stage          string
		declaredFormat string
		estimatedSize  int
	}{{
		name:          "plain base64",
		request:       domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVsbG8="},
		ok:            true,
		estimatedSize: 5,
	}, {
		name:          "surrounding whitespace is trimmed",
		request:       domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "  aGVsbG8=\n"},
		ok:            true,
		estimatedSize: 5,
	}, {
		name:           "data uri with format",
		request:        domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "data:image/png;base64,aGVsbG8="},
		ok:             true,
		declaredFormat: "png",
		estimatedSize:  5,
	}, {
		name:           "jpg alias is normalized",
		request:        domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "data:image/jpg;base64,aGVsbG8="},
		ok:             true,
		declaredFormat: "jpeg",
		estimatedSize:  5,
	}, {
		name:    "empty record id",
		request: domain.RenderRequest{RecordId: " ", Field: "photo", Content: "aGVsbG8="},
		stage:   domain.StageShape,
	}, {
		name:    "empty content",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "   "},
		stage:   domain.StageShape,
	}, {
		name:    "data uri without base64 marker",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "data:image/png,rawdata"},
		stage:   domain.StageShape,
	}, {
		name:    "data uri with non-image media type",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "data:text/plain;base64,aGVsbG8="},
		stage:   domain.StageShape,
	}, {
		name:    "data uri with media type parameters",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "data:image/png;charset=utf-8;base64,aGVsbG8="},
		stage:   domain.StageShape,
	}, {
		name:    "padding in the middle",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aG=sbG8h"},
		stage:   domain.StageShape,
	}, {
		name:    "length is not a multiple of four",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVsbG8"},
		stage:   domain.StageShape,
	}, {
		name:    "url-safe alphabet",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVs-_8="},
		stage:   domain.StageShape,
	}, {
		name:    "embedded line break",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVs\nbG8="},
		stage:   domain.StageShape,
	}, {
		name:          "just under the size limit",
		request:       domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: strings.Repeat("A", 1364)},
		ok:            true,
		estimatedSize: 1023,
	}, {
		name:    "just over the size limit",
		request: domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: strings.Repeat("A", 1368)},
		stage:   domain.StageSize,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			check := srv.Validate(tt.request)
			require.EqualValues(t, tt.ok, check.Ok)
			if !tt.ok {
				require.EqualValues(t, tt.stage, check.Stage)
				require.NotEmpty(t, check.Reason)
				require.Nil(t, check.Payload)
				return
			}
			require.NotNil(t, check.Payload)
			require.EqualValues(t, tt.request.RecordId, check.Payload.RecordId)
			require.EqualValues(t, tt.declaredFormat, check.Payload.DeclaredFormat)
			require.EqualValues(t, tt.estimatedSize, check.Payload.EstimatedSize)
		})
	}
}
