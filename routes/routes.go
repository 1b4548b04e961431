package routes

import (
	"fmt"
	"strings"
)

const (
	RejectionsPath = "/internal/rejections"
	MetricsPath    = "/internal/metrics"
)

func RenderPath(pathPrefix string) string {
	return normalizePrefix(pathPrefix) + "/render"
}

func ImageRoutePattern(pathPrefix string) string {
	return normalizePrefix(pathPrefix) + "/image/{digest}"
}

func ImagePath(pathPrefix string, digest string) string {
	return fmt.Sprintf("%s/image/%s", normalizePrefix(pathPrefix), digest)
}

func normalizePrefix(pathPrefix string) string {
	pathPrefix = strings.TrimSuffix(pathPrefix, "/")
	if !strings.HasPrefix(pathPrefix, "/") {
		return "/" + pathPrefix
	}
	return pathPrefix
}
