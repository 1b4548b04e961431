package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync/atomic"
	"time"

	_ "golang.org/x/image/webp"
	"isp-image-guard-service/conf"
	"isp-image-guard-service/domain"
)

type ProbeMetrics interface {
	ProbeStarted()
	ProbeFinished(startedAt time.Time)
}

type Probe struct {
	maxConcurrent  int64
	timeout        time.Duration
	allowedFormats map[string]bool
	maxDimension   int
	inflight       *atomic.Int64
	metrics        ProbeMetrics
}

func NewProbe(guard conf.Guard, config conf.Probe, metrics ProbeMetrics) *Probe {
	allowedFormats := make(map[string]bool)
	for _, format := range guard.GetAllowedFormats() {
		allowedFormats[normalizeFormat(format)] = true
	}
	return &Probe{
		maxConcurrent:  int64(config.MaxConcurrent),
		timeout:        time.Duration(config.TimeoutInMs) * time.Millisecond,
		allowedFormats: allowedFormats,
		maxDimension:   guard.MaxDimensionInPx,
		inflight:       &atomic.Int64{},
		metrics:        metrics,
	}
}

func (s *Probe) Verify(ctx context.Context, payload domain.Payload) (*domain.ProbeResult, error) {
	if s.inflight.Add(1) > s.maxConcurrent {
		s.inflight.Add(-1)
		return &domain.ProbeResult{
			Stage:  domain.StageSlot,
			Reason: "no free validation slot",
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startedAt := time.Now()
	s.metrics.ProbeStarted()

	results := make(chan *domain.ProbeResult, 1)
	go func() {
		defer s.inflight.Add(-1)
		defer s.metrics.ProbeFinished(startedAt)
		results <- s.verify(payload)
	}()

	select {
	case result := <-results:
		return result, nil
	case <-ctx.Done():
		// декодирование продолжается в фоне и освободит слот по завершении
		return &domain.ProbeResult{
			Stage:  domain.StageProbe,
			Reason: fmt.Sprintf("validation timed out after %s", s.timeout),
		}, nil
	}
}

// nolint:cyclop
func (s *Probe) verify(payload domain.Payload) *domain.ProbeResult {
	data, err := base64.StdEncoding.Strict().DecodeString(payload.Encoded)
	if err != nil {
		return &domain.ProbeResult{
			Stage:  domain.StageRoundTrip,
			Reason: fmt.Sprintf("content does not decode: %s", err),
		}
	}

	reencoded := base64.StdEncoding.EncodeToString(data)
	if reencoded != payload.Encoded {
		return &domain.ProbeResult{
			Stage:  domain.StageRoundTrip,
			Reason: "re-encoded content differs from submitted content",
		}
	}

	digest := sha256.Sum256(data)
	digestHex := hex.EncodeToString(digest[:])

	format, contentType, ok := sniffImageFormat(data)
	if !ok {
		return rejectedProbe("unknown image signature", digestHex)
	}
	if !s.allowedFormats[format] {
		return rejectedProbe(fmt.Sprintf("format '%s' is not allowed", format), digestHex)
	}
	if payload.DeclaredFormat != "" && payload.DeclaredFormat != format {
		reason := fmt.Sprintf("declared format '%s' does not match actual '%s'", payload.DeclaredFormat, format)
		return rejectedProbe(reason, digestHex)
	}

	config, decodedFormat, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return rejectedProbe(fmt.Sprintf("image header does not decode: %s", err), digestHex)
	}
	if decodedFormat != format {
		reason := fmt.Sprintf("decoded format '%s' does not match signature '%s'", decodedFormat, format)
		return rejectedProbe(reason, digestHex)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return rejectedProbe("empty image dimensions", digestHex)
	}
	if config.Width > s.maxDimension || config.Height > s.maxDimension {
		reason := fmt.Sprintf("dimensions %dx%d exceed limit %d", config.Width, config.Height, s.maxDimension)
		return rejectedProbe(reason, digestHex)
	}

	return &domain.ProbeResult{
		Verified:    true,
		Format:      format,
		ContentType: contentType,
		Width:       config.Width,
		Height:      config.Height,
		Data:        data,
		Digest:      digestHex,
	}
}

func rejectedProbe(reason string, digest string) *domain.ProbeResult {
	return &domain.ProbeResult{
		Stage:  domain.StageProbe,
		Reason: reason,
		Digest: digest,
	}
}

// сигнатуры поддерживаемых форматов
func sniffImageFormat(data []byte) (string, string, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png", "image/png", true
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg", "image/jpeg", true
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "gif", "image/gif", true
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp", "image/webp", true
	default:
		return "", "", false
	}
}
