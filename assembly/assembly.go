package assembly

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"isp-image-guard-service/conf"
	"isp-image-guard-service/service"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/bootstrap"
	"github.com/txix-open/isp-kit/cluster"
	"github.com/txix-open/isp-kit/grpc/client"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/log"
)

const (
	platformModuleName = "lob-platform-service"
)

type Assembly struct {
	boot        *bootstrap.Bootstrap
	server      *http.Server
	logger      *log.Adapter
	redisCli    redis.UniversalClient
	platformCli *client.Client
	bindings    []conf.Binding
	metrics     *service.Metrics
}

func New(boot *bootstrap.Bootstrap) (*Assembly, error) {
	server := http.NewServer(boot.App.Logger())

	localConfig := conf.Local{}
	err := boot.App.Config().Read(&localConfig)
	if err != nil {
		return nil, errors.WithMessage(err, "read local config")
	}

	platformCli, err := client.Default()
	if err != nil {
		return nil, errors.WithMessage(err, "create platform cli")
	}

	return &Assembly{
		boot:        boot,
		server:      server,
		logger:      boot.App.Logger(),
		platformCli: platformCli,
		bindings:    localConfig.Bindings,
		metrics:     service.NewMetrics(prometheus.DefaultRegisterer),
	}, nil
}

func (a *Assembly) ReceiveConfig(ctx context.Context, remoteConfig []byte) error {
	var (
		newCfg  conf.Remote
		prevCfg conf.Remote
	)
	err := a.boot.RemoteConfig.Upgrade(remoteConfig, &newCfg, &prevCfg)
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "upgrade remote config"))
	}
	err = newCfg.Validate()
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "invalid remote config"))
	}

	a.logger.SetLevel(newCfg.Logging.LogLevel)

	var newRedisCli redis.UniversalClient
	if newCfg.Redis != nil {
		newRedisCli = a.redisClient(*newCfg.Redis)
	}

	locator := NewLocator(a.logger, a.platformCli, a.bindings, a.metrics)
	handler := locator.Handler(newCfg, newRedisCli)

	a.server.Upgrade(handler)

	if a.redisCli != nil {
		_ = a.redisCli.Close()
	}
	a.redisCli = newRedisCli

	return nil
}

func (a *Assembly) Runners() []app.Runner {
	eventHandler := cluster.NewEventHandler().
		RemoteConfigReceiver(a)
	eventHandler.RequireModule(platformModuleName, a.platformCli)

	return []app.Runner{
		app.RunnerFunc(func(ctx context.Context) error {
			return a.server.ListenAndServe(a.boot.BindingAddress)
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			return a.boot.ClusterCli.Run(ctx, eventHandler)
		}),
	}
}

func (a *Assembly) Closers() []app.Closer {
	return []app.Closer{
		a.boot.ClusterCli,
		app.CloserFunc(func() error {
			return a.server.Shutdown(context.Background())
		}),
		a.platformCli,
		app.CloserFunc(func() error {
			if a.redisCli != nil {
				return a.redisCli.Close()
			}
			return nil
		}),
	}
}

func (a *Assembly) redisClient(config conf.Redis) redis.UniversalClient {
	if config.Sentinel != nil {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       config.Sentinel.MasterName,
			SentinelAddrs:    config.Sentinel.Addresses,
			SentinelUsername: config.Sentinel.Username,
			SentinelPassword: config.Sentinel.Password,
			Username:         config.Username,
			Password:         config.Password,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Username: config.Username,
		Password: config.Password,
	})
}
