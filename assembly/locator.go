package assembly

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"isp-image-guard-service/conf"
	"isp-image-guard-service/handler"
	"isp-image-guard-service/middleware"
	"isp-image-guard-service/repository"
	"isp-image-guard-service/routes"
	"isp-image-guard-service/service"

	"github.com/txix-open/isp-kit/grpc/client"
	"github.com/txix-open/isp-kit/log"
)

type Locator struct {
	logger      log.Logger
	platformCli *client.Client
	bindings    []conf.Binding
	metrics     *service.Metrics
}

func NewLocator(
	logger log.Logger,
	platformCli *client.Client,
	bindings []conf.Binding,
	metrics *service.Metrics,
) Locator {
	return Locator{
		logger:      logger,
		platformCli: platformCli,
		bindings:    bindings,
		metrics:     metrics,
	}
}

func (l Locator) Handler(config conf.Remote, redisCli redis.UniversalClient) http.Handler {
	platformRepo := repository.NewPlatform(l.platformCli)
	identityCache := repository.NewIdentityCache(time.Duration(config.Caching.ViewerIdentityInSec) * time.Second)
	identityService := service.NewIdentity(identityCache, platformRepo)

	var ledger service.RateLimitLedger
	if redisCli != nil {
		ledger = repository.NewRedisRateLimitLedger(redisCli)
	} else {
		ledger = repository.NewRateLimitLedger()
	}
	rateLimitService := service.NewRateLimit(ledger, config.RateLimit)

	payloadService := service.NewPayload(config.Guard)
	probeService := service.NewProbe(config.Guard, config.Probe, l.metrics)
	journal := repository.NewRejectionJournal(config.Journal.GetCapacity())
	verdictService := service.NewVerdict(journal, l.metrics)
	renderedImages := repository.NewRenderedImageStore(time.Duration(config.Caching.RenderedImageInSec) * time.Second)

	maxRequestBodySize := config.Http.MaxRequestBodySizeInMb * 1024 * 1024 //nolint:mnd

	router := mux.NewRouter()
	for _, binding := range l.bindings {
		renderHandler := middleware.Chain(
			handler.NewRender(probeService, renderedImages, binding.PathPrefix, binding.Container),
			middleware.RequestId(config.EnableClientRequestIdForwarding),
			middleware.Logger(
				l.logger,
				config.Logging.RequestLogEnable,
				config.Logging.BodyLogEnable,
				config.Logging.SkipBodyLoggingEndpointPrefixes,
			),
			middleware.ErrorHandler(l.logger),
			middleware.Verdict(verdictService),
			middleware.Identify(identityService),
			middleware.Payload(payloadService, binding.Field),
			middleware.RateLimit(rateLimitService),
		)
		renderPath := routes.RenderPath(binding.PathPrefix)
		router.Handle(
			renderPath,
			middleware.Entrypoint(maxRequestBodySize, renderHandler, l.logger, renderPath),
		).Methods(http.MethodPost)

		imageHandler := middleware.Chain(
			handler.NewImage(renderedImages),
			middleware.RequestId(config.EnableClientRequestIdForwarding),
			middleware.Logger(l.logger, config.Logging.RequestLogEnable, false, nil),
			middleware.ErrorHandler(l.logger),
		)
		router.Handle(
			routes.ImageRoutePattern(binding.PathPrefix),
			middleware.Entrypoint(maxRequestBodySize, imageHandler, l.logger, routes.ImageRoutePattern(binding.PathPrefix)),
		).Methods(http.MethodGet)
	}

	rejectionsHandler := middleware.Chain(
		handler.NewRejections(journal),
		middleware.RequestId(config.EnableClientRequestIdForwarding),
		middleware.Logger(l.logger, config.Logging.RequestLogEnable, false, nil),
		middleware.ErrorHandler(l.logger),
		middleware.AdminAuthenticate(config.AdminSecret),
	)
	router.Handle(
		routes.RejectionsPath,
		middleware.Entrypoint(maxRequestBodySize, rejectionsHandler, l.logger, routes.RejectionsPath),
	).Methods(http.MethodGet)

	router.Handle(routes.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)

	return router
}
