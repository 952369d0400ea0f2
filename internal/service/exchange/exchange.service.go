package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/krobus00/derivex-service/internal/constant"
	"github.com/krobus00/derivex-service/internal/entity"
	"github.com/krobus00/derivex-service/internal/util"
	"github.com/sirupsen/logrus"
)

// ExchangeService shares one ExchangeRegistry between goroutines. A single
// RWMutex guards every registry call so both indexes are always read and
// written together. Lifecycle events are stamped and broadcast while the write
// lock is held, and published in the same order under publishMu.
type ExchangeService struct {
	mu        sync.RWMutex
	publishMu sync.Mutex
	registry  *ExchangeRegistry
	publisher entity.EventPublisher
	hub       *EventHub
	now       func() time.Time
}

type ExchangeServiceOption func(*ExchangeService)

func WithEventPublisher(publisher entity.EventPublisher) ExchangeServiceOption {
	return func(s *ExchangeService) {
		s.publisher = publisher
	}
}

func WithEventHub(hub *EventHub) ExchangeServiceOption {
	return func(s *ExchangeService) {
		s.hub = hub
	}
}

func NewExchangeService(registry *ExchangeRegistry, opts ...ExchangeServiceOption) *ExchangeService {
	s := &ExchangeService{
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *ExchangeService) Server() string {
	return s.registry.Server()
}

func (s *ExchangeService) FactoryLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.FactoryLabel()
}

func (s *ExchangeService) CreateExchange(ctx context.Context, token string) (entity.Exchange, error) {
	if err := ctx.Err(); err != nil {
		return entity.Exchange{}, err
	}

	s.mu.Lock()
	exchange, err := s.registry.CreateExchange(token)
	if err != nil {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"token":      token,
			"request_id": util.RequestIDFromContext(ctx),
		}).Warnf("create exchange rejected: %v", err)
		return entity.Exchange{}, err
	}
	event := s.commit(ctx, entity.ExchangeEventCreated, exchange)

	logrus.WithFields(logrus.Fields{
		"token":  exchange.Token(),
		"server": exchange.Server(),
	}).Info("exchange created")

	s.publish(ctx, event)

	return exchange, nil
}

func (s *ExchangeService) GetExchangeByToken(token string) (entity.Exchange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.GetExchangeByToken(token)
}

func (s *ExchangeService) GetTokenByExchange(exchange entity.Exchange) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.GetTokenByExchange(exchange)
}

// RemoveExchange is idempotent. An event is emitted only when a registered
// exchange was actually dropped.
func (s *ExchangeService) RemoveExchange(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	exchange, existed := s.registry.GetExchangeByToken(token)
	s.registry.RemoveExchange(token)
	if !existed {
		s.mu.Unlock()
		return nil
	}
	event := s.commit(ctx, entity.ExchangeEventRemoved, exchange)

	logrus.WithField("token", token).Info("exchange removed")
	s.publish(ctx, event)

	return nil
}

func (s *ExchangeService) AssignTokenID(id uint64, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.AssignTokenID(id, token)
}

func (s *ExchangeService) GetTokenByID(id uint64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.GetTokenByID(id)
}

func (s *ExchangeService) ListExchanges() []entity.Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.registry.Exchanges()
}

// SeedTokens registers tokens at start-up. Tokens that are already present or
// malformed are logged and skipped.
func (s *ExchangeService) SeedTokens(ctx context.Context, tokens []string) int {
	created := 0
	for _, token := range tokens {
		if _, err := s.CreateExchange(ctx, token); err != nil {
			continue
		}
		created++
	}

	return created
}

// commit must be called with mu held for writing. It stamps the event,
// broadcasts it, takes publishMu and releases mu, so publish runs in the
// same order the mutations were applied.
func (s *ExchangeService) commit(ctx context.Context, eventType entity.ExchangeEventType, exchange entity.Exchange) entity.ExchangeEvent {
	requestID := util.RequestIDFromContext(ctx)
	event := entity.ExchangeEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Token:      exchange.Token(),
		Factory:    exchange.Factory(),
		Server:     exchange.Server(),
		RequestID:  null.NewString(requestID, requestID != ""),
		OccurredAt: s.now(),
	}

	if s.hub != nil {
		s.hub.Broadcast(event)
	}

	s.publishMu.Lock()
	s.mu.Unlock()

	return event
}

// publish releases publishMu taken by commit.
func (s *ExchangeService) publish(ctx context.Context, event entity.ExchangeEvent) {
	defer s.publishMu.Unlock()

	if s.publisher == nil {
		return
	}

	subject := constant.ExchangeEventStreamSubjectCreated
	if event.Type == entity.ExchangeEventRemoved {
		subject = constant.ExchangeEventStreamSubjectRemoved
	}

	err := s.publisher.Publish(ctx, subject, entity.ExchangeEventMessage{Data: event})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"event_id": event.ID,
			"subject":  subject,
		}).Errorf("failed to publish exchange event: %v", err)
	}
}
