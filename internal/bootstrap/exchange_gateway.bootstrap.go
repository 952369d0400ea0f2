package bootstrap

import (
	"context"
	"fmt"
	"net"

	"github.com/krobus00/derivex-service/internal/config"
	"github.com/krobus00/derivex-service/internal/constant"
	"github.com/krobus00/derivex-service/internal/entity"
	grpcHandler "github.com/krobus00/derivex-service/internal/handler/exchange/grpc"
	httpHandler "github.com/krobus00/derivex-service/internal/handler/exchange/http"
	"github.com/krobus00/derivex-service/internal/infrastructure"
	"github.com/krobus00/derivex-service/internal/repository"
	"github.com/krobus00/derivex-service/internal/service/exchange"
	"github.com/krobus00/derivex-service/internal/service/journal"
	"github.com/krobus00/derivex-service/internal/service/tokenid"
	"github.com/krobus00/derivex-service/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func StartExchangeGateway(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	derivexDB, err := infrastructure.NewPostgresConnection(ctx, config.Env.Database["derivex"])
	util.ContinueOrFatal(err)
	infrastructure.StartPostgresHealthCheck(ctx, derivexDB, config.Env.Database["derivex"].PingInterval)

	redisClient, err := infrastructure.NewRedisClient(ctx, config.Env.Redis["token_id"])
	util.ContinueOrFatal(err)

	nc, js, err := infrastructure.NewJetstream(config.Env.NatsJetstream)
	util.ContinueOrFatal(err)

	tokenIDRepo := repository.NewTokenIDRepository(derivexDB)
	tokenIDCacheRepo := repository.NewTokenIDCacheRepository(redisClient, config.Env.Redis["token_id"].TTL)
	exchangeEventRepo := repository.NewExchangeEventRepository(derivexDB)

	eventPublisher := exchange.NewJetstreamEventPublisher(js)

	publishers := make([]entity.Publisher, 0)
	publishers = append(publishers, eventPublisher)
	for _, v := range publishers {
		err = v.JetstreamEventInit(ctx)
		util.ContinueOrFatal(err)
	}

	registry := exchange.NewExchangeRegistry(
		config.Env.Registry.Server,
		exchange.WithFactoryLabel(config.Env.Registry.FactoryLabel),
	)
	eventHub := exchange.NewEventHub(0)
	exchangeService := exchange.NewExchangeService(
		registry,
		exchange.WithEventPublisher(eventPublisher),
		exchange.WithEventHub(eventHub),
	)

	seeded := exchangeService.SeedTokens(ctx, config.Env.Registry.SeedTokens)
	logrus.WithField("server", registry.Server()).Infof("seeded %d exchange(s)", seeded)

	tokenIDService := tokenid.NewTokenIDService(exchangeService, tokenIDRepo, tokenIDCacheRepo)
	loaded, err := tokenIDService.Load(ctx)
	util.ContinueOrFatal(err)
	logrus.Infof("loaded %d token id(s)", loaded)

	grpcServer := grpc.NewServer()
	exchangeGrpcServer := grpcHandler.NewExchangeGRPCServer(exchangeService)
	grpcHandler.RegisterExchangeRegistryServer(grpcServer, exchangeGrpcServer)

	if config.Env.Env == constant.DevelopmentEnvironment {
		reflection.Register(grpcServer)
	}

	grpcPort := fmt.Sprintf(":%s", config.Env.Port["exchange_gateway_grpc"])

	lis, err := net.Listen("tcp", grpcPort)
	util.ContinueOrFatal(err)

	go func() {
		_ = grpcServer.Serve(lis)
	}()
	logrus.Info(fmt.Sprintf("grpc server started on %s", grpcPort))

	httpMux := infrastructure.NewHealthMux(map[string]infrastructure.ReadinessCheck{
		"postgres": derivexDB.PingContext,
		"redis":    tokenIDCacheRepo.Ping,
		"nats": func(ctx context.Context) error {
			if !nc.IsConnected() {
				return fmt.Errorf("nats status %s", nc.Status())
			}
			return nil
		},
	})
	journalService := journal.NewJournalService(exchangeEventRepo, js, eventPublisher, config.Env.NatsJetstream.MaxRetries, config.Env.NatsJetstream.TimeoutHandler["exchange_event"])
	exchangeHTTPHandler := httpHandler.NewExchangeHTTPHandler(exchangeService, tokenIDService, journalService, eventHub, config.Env.APIKeys)
	exchangeHTTPHandler.Register(httpMux)

	httpServerConfig := infrastructure.DefaultHTTPServerConfig("exchange_gateway_http")
	httpServerConfig.ShutdownTimeout = config.Env.GracefulShutdownTimeout
	httpServer := infrastructure.NewHTTPServerWithConfig(httpServerConfig, httpMux)

	go func() {
		err := httpServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()
	logrus.Info(fmt.Sprintf("http server started on %s", httpServerConfig.Addr))

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"derivex database": func(ctx context.Context) error {
			cancel()
			return derivexDB.Close()
		},
		"redis": func(ctx context.Context) error {
			return redisClient.Close()
		},
		"grpc": func(ctx context.Context) error {
			grpcServer.GracefulStop()
			return nil
		},
		"http": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
