package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/krobus00/derivex-service/internal/constant"
	"github.com/krobus00/derivex-service/internal/entity"
	"github.com/krobus00/derivex-service/internal/repository"
	"github.com/krobus00/derivex-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

var (
	ErrMalformedEvent    = errors.New("malformed exchange event")
	ErrRecordEventFailed = errors.New("failed to record exchange event")
	ErrHistoryToken      = errors.New("token is required")
)

const (
	defaultHistoryLimit uint64 = 50
	maxHistoryLimit     uint64 = 500
)

// JournalService consumes registry lifecycle events and appends them to the
// exchange_events table.
type JournalService struct {
	eventRepo      *repository.ExchangeEventRepository
	js             nats.JetStreamContext
	publisher      entity.EventPublisher
	maxRetries     int
	handlerTimeout time.Duration
}

func NewJournalService(eventRepo *repository.ExchangeEventRepository, js nats.JetStreamContext, publisher entity.EventPublisher, maxRetries int, handlerTimeout time.Duration) *JournalService {
	return &JournalService{
		eventRepo:      eventRepo,
		js:             js,
		publisher:      publisher,
		maxRetries:     maxRetries,
		handlerTimeout: handlerTimeout,
	}
}

func (s *JournalService) JetstreamEventSubscribe(ctx context.Context) error {
	_, err := s.js.QueueSubscribe(
		constant.ExchangeEventStreamSubjectAll,
		constant.ExchangeEventQueueName,
		func(msg *nats.Msg) {
			err := util.ProcessWithTimeout(s.handlerTimeout, msg, s.handleExchangeEvent)
			if err != nil {
				logrus.Errorf("error processing message: %v", err)
				return
			}

			err = msg.Ack()
			if err != nil {
				logrus.Errorf("failed to acknowledge message: %v", err)
				return
			}
		},
		nats.ManualAck(),
		nats.Durable(constant.ExchangeEventQueueGroup),
		nats.Context(ctx),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", constant.ExchangeEventStreamSubjectAll, err)
	}

	logrus.Infof("subscribed to %s", constant.ExchangeEventStreamSubjectAll)

	return nil
}

// handleExchangeEvent returns nil for messages that must be acked: recorded
// events, malformed payloads, and failures that were re-queued. A non-nil
// error leaves the message for redelivery.
func (s *JournalService) handleExchangeEvent(ctx context.Context, msg *nats.Msg) error {
	logger := logrus.WithFields(logrus.Fields{
		"subject": msg.Subject,
		"req":     string(msg.Data),
	})

	var event entity.ExchangeEventMessage
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Errorf("%v: %v", ErrMalformedEvent, err)
		return nil
	}

	if event.Data.ID == "" || event.Data.Token == "" {
		logger.Error(ErrMalformedEvent)
		return nil
	}

	err := s.eventRepo.Create(ctx, &event.Data)
	if err == nil {
		logger.WithField("event_id", event.Data.ID).Debug("exchange event recorded")
		return nil
	}

	logger.Errorf("%v: %v", ErrRecordEventFailed, err)

	event.RetryCount++
	if event.RetryCount >= s.maxRetries {
		logger.WithField("retry", event.RetryCount).Error("exchange event dropped after max retries")
		return nil
	}

	if pubErr := s.publisher.Publish(ctx, msg.Subject, event); pubErr != nil {
		logger.Error(pubErr)
		return fmt.Errorf("%w: %v", ErrRecordEventFailed, err)
	}

	return nil
}

// History returns the recorded events of token, newest first.
func (s *JournalService) History(ctx context.Context, token string, limit uint64) ([]entity.ExchangeEvent, error) {
	if token == "" {
		return nil, ErrHistoryToken
	}

	switch {
	case limit == 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	events, err := s.eventRepo.GetByToken(ctx, token, limit)
	if err != nil {
		return nil, fmt.Errorf("load history of %q: %w", token, err)
	}

	return events, nil
}
