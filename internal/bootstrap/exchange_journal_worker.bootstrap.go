package bootstrap

import (
	"context"

	"github.com/krobus00/derivex-service/internal/config"
	"github.com/krobus00/derivex-service/internal/entity"
	"github.com/krobus00/derivex-service/internal/infrastructure"
	"github.com/krobus00/derivex-service/internal/repository"
	"github.com/krobus00/derivex-service/internal/service/exchange"
	"github.com/krobus00/derivex-service/internal/service/journal"
	"github.com/krobus00/derivex-service/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func StartExchangeJournalWorker(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	derivexDB, err := infrastructure.NewPostgresConnection(ctx, config.Env.Database["derivex"])
	util.ContinueOrFatal(err)
	infrastructure.StartPostgresHealthCheck(ctx, derivexDB, config.Env.Database["derivex"].PingInterval)

	nc, js, err := infrastructure.NewJetstream(config.Env.NatsJetstream)
	util.ContinueOrFatal(err)

	exchangeEventRepo := repository.NewExchangeEventRepository(derivexDB)
	eventPublisher := exchange.NewJetstreamEventPublisher(js)

	journalService := journal.NewJournalService(
		exchangeEventRepo,
		js,
		eventPublisher,
		config.Env.NatsJetstream.MaxRetries,
		config.Env.NatsJetstream.TimeoutHandler["exchange_event"],
	)

	publishers := make([]entity.Publisher, 0)
	publishers = append(publishers, eventPublisher)
	for _, v := range publishers {
		err = v.JetstreamEventInit(ctx)
		util.ContinueOrFatal(err)
	}

	subscribers := make([]entity.Subscriber, 0)
	subscribers = append(subscribers, journalService)
	for _, v := range subscribers {
		err = v.JetstreamEventSubscribe(ctx)
		util.ContinueOrFatal(err)
	}

	logrus.Info("exchange journal worker started")

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"derivex database": func(ctx context.Context) error {
			cancel()
			return derivexDB.Close()
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
