// nolint:canonicalheader
package tests

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"isp-image-guard-service/assembly"
	"isp-image-guard-service/conf"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/grpc/client"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/test"
	"github.com/txix-open/isp-kit/test/grpct"
)

const (
	validViewerToken = "valid-viewer-token"
	adminSecret      = "admin-secret"
)

type GuardTestSuite struct {
	suite.Suite
}

func (s *GuardTestSuite) TestRenderAndFetchImage() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	imageData := encodePng(require, 16, 8)
	resp := domain.RenderResponse{}
	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(domain.RenderRequest{
			RecordId: "rec-1",
			Field:    "photo",
			Content:  base64.StdEncoding.EncodeToString(imageData),
		}).
		JsonResponseBody(&resp).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues("record_card", resp.Container)
	require.EqualValues("image/png", resp.ContentType)
	require.EqualValues("png", resp.Format)
	require.EqualValues(16, resp.Width)
	require.EqualValues(8, resp.Height)
	require.EqualValues(len(imageData), resp.SizeInBytes)
	require.NotEmpty(resp.Digest)
	require.EqualValues("/api/records/image/"+resp.Digest, resp.ImagePath)

	imageResp, err := srv.Client().Get(srv.URL + resp.ImagePath)
	require.NoError(err)
	defer imageResp.Body.Close()
	require.EqualValues(http.StatusOK, imageResp.StatusCode)
	require.EqualValues("image/png", imageResp.Header.Get("Content-Type"))
	require.EqualValues("nosniff", imageResp.Header.Get("X-Content-Type-Options"))
	require.EqualValues("no-store", imageResp.Header.Get("Cache-Control"))
	require.EqualValues("default-src 'none'", imageResp.Header.Get("Content-Security-Policy"))
	fetched, err := io.ReadAll(imageResp.Body)
	require.NoError(err)
	require.EqualValues(imageData, fetched)
}

func (s *GuardTestSuite) TestRenderRejectsCorruptedContent() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	// корректный алфавит, но ненулевые хвостовые биты перед '='
	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVsbG9="}).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusUnprocessableEntity, errResp.StatusCode)
}

func (s *GuardTestSuite) TestRenderRejectsMalformedContent() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVs bG8="}).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusBadRequest, errResp.StatusCode)
}

func (s *GuardTestSuite) TestRenderUnguardedField() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "signature", Content: "aGVsbG8="}).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusNotFound, errResp.StatusCode)
}

func (s *GuardTestSuite) TestRenderUnknownViewer() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", "wrong-token").
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVsbG8="}).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusUnauthorized, errResp.StatusCode)

	_, err = cli.Post(srv.URL+"/api/records/render").
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVsbG8="}).
		StatusCodeToError().
		Do(context.Background())
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusUnauthorized, errResp.StatusCode)
}

func (s *GuardTestSuite) TestRenderOversizedImage() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	config.Guard.MaxImageSizeInKb = 1
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: strings.Repeat("A", 2732)}).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusRequestEntityTooLarge, errResp.StatusCode)
}

func (s *GuardTestSuite) TestRenderOversizedBody() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	// тело больше MaxRequestBodySizeInMb, чтение обрывается на http.MaxBytesReader
	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: strings.Repeat("A", 1100*1024)}).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusRequestEntityTooLarge, errResp.StatusCode)
}

func (s *GuardTestSuite) TestRenderRateLimit() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	config.RateLimit = conf.RateLimit{WindowInSec: 60, RequestsPerWindow: 1}
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	imageData := encodePng(require, 4, 4)
	renderRequest := domain.RenderRequest{
		RecordId: "rec-1",
		Field:    "photo",
		Content:  base64.StdEncoding.EncodeToString(imageData),
	}
	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(renderRequest).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)

	body, err := json.Marshal(renderRequest)
	require.NoError(err)
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPost,
		srv.URL+"/api/records/render",
		bytes.NewReader(body),
	)
	require.NoError(err)
	req.Header.Set("x-viewer-token", validViewerToken)
	resp, err := srv.Client().Do(req)
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusTooManyRequests, resp.StatusCode)
	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	require.NoError(err)
	require.Positive(retryAfter)
}

func (s *GuardTestSuite) TestRenderRateLimitWithRedis() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	config.RateLimit = conf.RateLimit{WindowInSec: 60, RequestsPerWindow: 1}
	redisCli := NewRedis(test)
	s.T().Cleanup(func() {
		err := redisCli.FlushDB(context.Background()).Err()
		require.NoError(err)
	})
	srv := s.newServer(test, config, platformCli, redisCli)
	cli := httpcli.New()

	imageData := encodePng(require, 4, 4)
	renderRequest := domain.RenderRequest{
		RecordId: "rec-1",
		Field:    "photo",
		Content:  base64.StdEncoding.EncodeToString(imageData),
	}
	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(renderRequest).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)

	_, err = cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(renderRequest).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusTooManyRequests, errResp.StatusCode)
}

func (s *GuardTestSuite) TestImageNotRendered() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)

	resp, err := srv.Client().Get(srv.URL + "/api/records/image/deadbeef")
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusNotFound, resp.StatusCode)
}

func (s *GuardTestSuite) TestRejectionJournal() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)
	cli := httpcli.New()

	_, err := cli.Post(srv.URL+"/api/records/render").
		Header("x-viewer-token", validViewerToken).
		JsonRequestBody(domain.RenderRequest{RecordId: "rec-1", Field: "photo", Content: "aGVsbG9="}).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusUnprocessableEntity, errResp.StatusCode)

	events := []domain.RejectionEvent{}
	_, err = cli.Get(srv.URL+"/internal/rejections").
		Header("x-admin-secret", adminSecret).
		JsonResponseBody(&events).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.Len(events, 1)
	require.EqualValues(domain.StageRoundTrip, events[0].Stage)
	require.EqualValues("viewer-1", events[0].ViewerId)
	require.EqualValues("rec-1", events[0].RecordId)
	require.EqualValues("photo", events[0].Field)

	_, err = cli.Get(srv.URL + "/internal/rejections").
		StatusCodeToError().
		Do(context.Background())
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusUnauthorized, errResp.StatusCode)
}

func (s *GuardTestSuite) TestMetricsEndpoint() {
	test, require := test.New(s.T())
	config, platformCli := s.commonDependencies(test)
	srv := s.newServer(test, config, platformCli, nil)

	resp, err := srv.Client().Get(srv.URL + "/internal/metrics")
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusOK, resp.StatusCode)
}

func (s *GuardTestSuite) commonDependencies(test *test.Test) (conf.Remote, *client.Client) {
	platformService, platformCli := grpct.NewMock(test)
	platformService.Mock("session/verify_viewer", func(req domain.VerifyViewerRequest) domain.VerifyViewerResponse {
		if req.Token == validViewerToken {
			return domain.VerifyViewerResponse{
				Verified: true,
				Viewer:   &domain.ViewerInfo{ViewerId: "viewer-1", DisplayName: "First Viewer"},
			}
		}
		return domain.VerifyViewerResponse{Verified: false, ErrorReason: "unknown token"}
	})

	config := conf.Remote{
		Http: conf.Http{MaxRequestBodySizeInMb: 1},
		Logging: conf.Logging{
			LogLevel:         log.DebugLevel,
			RequestLogEnable: true,
			BodyLogEnable:    true,
		},
		Guard:                           conf.Guard{MaxImageSizeInKb: 256, MaxDimensionInPx: 1024},
		RateLimit:                       conf.RateLimit{WindowInSec: 1, RequestsPerWindow: 100},
		Probe:                           conf.Probe{MaxConcurrent: 4, TimeoutInMs: 1000},
		Caching:                         conf.Caching{RenderedImageInSec: 60, ViewerIdentityInSec: 60},
		Journal:                         conf.Journal{Capacity: 16},
		AdminSecret:                     adminSecret,
		EnableClientRequestIdForwarding: true,
	}

	return config, platformCli
}

func (s *GuardTestSuite) newServer(
	test *test.Test,
	config conf.Remote,
	platformCli *client.Client,
	redisCli redis.UniversalClient,
) *httptest.Server {
	locator := assembly.NewLocator(
		test.Logger(),
		platformCli,
		[]conf.Binding{{PathPrefix: "/api/records", Field: "photo", Container: "record_card"}},
		service.NewMetrics(prometheus.NewRegistry()),
	)
	srv := httptest.NewServer(locator.Handler(config, redisCli))
	s.T().Cleanup(srv.Close)
	return srv
}

func TestGuardTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(GuardTestSuite))
}

func encodePng(require *require.Assertions, width int, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	buf := &bytes.Buffer{}
	err := png.Encode(buf, img)
	require.NoError(err)
	return buf.Bytes()
}
