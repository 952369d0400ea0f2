package exchange

import (
	"context"
	"errors"

	"github.com/krobus00/derivex-service/internal/constant"
	"github.com/krobus00/derivex-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

type JetstreamEventPublisher struct {
	js nats.JetStreamContext
}

func NewJetstreamEventPublisher(js nats.JetStreamContext) *JetstreamEventPublisher {
	return &JetstreamEventPublisher{js: js}
}

func (p *JetstreamEventPublisher) JetstreamEventInit(ctx context.Context) error {
	streamConfig := &nats.StreamConfig{
		Name:      constant.ExchangeEventStreamName,
		Subjects:  []string{constant.ExchangeEventStreamSubjectAll},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
		MaxAge:    constant.ExchangeEventStreamMaxAge,
		Replicas:  1,
	}

	stream, err := p.js.StreamInfo(constant.ExchangeEventStreamName, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		logrus.Error(err)
		return err
	}

	if stream == nil {
		logrus.Infof("creating stream: %s", constant.ExchangeEventStreamName)
		_, err = p.js.AddStream(streamConfig, nats.Context(ctx))
		return err
	}

	logrus.Infof("updating stream: %s", constant.ExchangeEventStreamName)
	_, err = p.js.UpdateStream(streamConfig, nats.Context(ctx))
	if err != nil {
		logrus.Error(err)
		return err
	}

	logrus.Infof("stream %s is ready", constant.ExchangeEventStreamName)

	return nil
}

func (p *JetstreamEventPublisher) Publish(ctx context.Context, subject string, data any) error {
	return util.PublishEvent(ctx, p.js, subject, data)
}
