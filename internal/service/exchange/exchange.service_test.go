package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/krobus00/derivex-service/internal/constant"
	"github.com/krobus00/derivex-service/internal/entity"
	"github.com/krobus00/derivex-service/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	subject string
	data    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{subject: subject, data: data})
	return p.err
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func TestExchangeService_CreateAndRemove_PublishesEvents(t *testing.T) {
	req := require.New(t)
	publisher := &fakePublisher{}
	hub := NewEventHub(4)
	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	svc := NewExchangeService(NewExchangeRegistry(testServer), WithEventPublisher(publisher), WithEventHub(hub))
	ctx := util.ContextWithRequestID(context.Background(), "req-1")

	exchange, err := svc.CreateExchange(ctx, "TOKEN_A")
	req.NoError(err)

	_, err = svc.CreateExchange(ctx, "TOKEN_A")
	req.ErrorIs(err, ErrDuplicateToken)

	req.NoError(svc.RemoveExchange(ctx, "TOKEN_A"))
	req.NoError(svc.RemoveExchange(ctx, "TOKEN_A"))

	published := publisher.published()
	req.Len(published, 2)
	req.Equal(constant.ExchangeEventStreamSubjectCreated, published[0].subject)
	req.Equal(constant.ExchangeEventStreamSubjectRemoved, published[1].subject)

	created := published[0].data.(entity.ExchangeEventMessage).Data
	req.Equal(entity.ExchangeEventCreated, created.Type)
	req.Equal(exchange, created.Exchange())
	req.Equal("req-1", created.RequestID.String)
	req.NotEmpty(created.ID)

	first := <-events
	second := <-events
	req.Equal(created.ID, first.ID)
	req.Equal(entity.ExchangeEventRemoved, second.Type)
}

func TestExchangeService_PublishFailureDoesNotFailCreate(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("nats down")}
	svc := NewExchangeService(NewExchangeRegistry(testServer), WithEventPublisher(publisher))

	_, err := svc.CreateExchange(context.Background(), "TOKEN_A")
	require.NoError(t, err)

	_, ok := svc.GetExchangeByToken("TOKEN_A")
	assert.True(t, ok)
}

func TestExchangeService_CanceledContext(t *testing.T) {
	svc := NewExchangeService(NewExchangeRegistry(testServer))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CreateExchange(ctx, "TOKEN_A")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, svc.ListExchanges())
}

func TestExchangeService_SeedTokens(t *testing.T) {
	svc := NewExchangeService(NewExchangeRegistry(testServer))

	created := svc.SeedTokens(context.Background(), []string{"TOKEN_A", "", "TOKEN_B", "TOKEN_A"})
	assert.Equal(t, 2, created)
	assert.Len(t, svc.ListExchanges(), 2)
}

func TestExchangeService_TokenID(t *testing.T) {
	svc := NewExchangeService(NewExchangeRegistry(testServer))
	svc.AssignTokenID(9, "TOKEN_A")

	token, ok := svc.GetTokenByID(9)
	assert.True(t, ok)
	assert.Equal(t, "TOKEN_A", token)
}

func TestExchangeService_ConcurrentAccessKeepsInverse(t *testing.T) {
	registry := NewExchangeRegistry(testServer)
	svc := NewExchangeService(registry)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				token := fmt.Sprintf("TOKEN_%d", (worker+i)%16)
				if i%3 == 0 {
					_ = svc.RemoveExchange(context.Background(), token)
					continue
				}
				if exchange, err := svc.CreateExchange(context.Background(), token); err == nil {
					svc.GetTokenByExchange(exchange)
				}
				svc.GetExchangeByToken(token)
			}
		}(worker)
	}
	wg.Wait()

	requireInverse(t, registry)
}

func TestEventHub_UnsubscribeAndDrop(t *testing.T) {
	hub := NewEventHub(1)
	events, unsubscribe := hub.Subscribe()
	require.Equal(t, 1, hub.Len())

	hub.Broadcast(entity.ExchangeEvent{ID: "1"})
	hub.Broadcast(entity.ExchangeEvent{ID: "2"})

	select {
	case evt := <-events:
		assert.Equal(t, "1", evt.ID)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Len())

	_, open := <-events
	assert.False(t, open)
}

// gatedPublisher holds the first Publish call until release is closed and
// records subjects only once each call returns.
type gatedPublisher struct {
	mu       sync.Mutex
	subjects []string
	calls    int
	entered  chan struct{}
	release  chan struct{}
}

func (p *gatedPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	p.calls++
	first := p.calls == 1
	p.mu.Unlock()

	if first {
		close(p.entered)
		<-p.release
	}

	p.mu.Lock()
	p.subjects = append(p.subjects, subject)
	p.mu.Unlock()
	return nil
}

func TestExchangeService_ConcurrentCreateRemove_KeepsEventOrder(t *testing.T) {
	req := require.New(t)
	publisher := &gatedPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	hub := NewEventHub(4)
	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	svc := NewExchangeService(NewExchangeRegistry(testServer), WithEventPublisher(publisher), WithEventHub(hub))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.CreateExchange(ctx, "TOKEN_A")
		assert.NoError(t, err)
	}()

	<-publisher.entered
	go func() {
		defer wg.Done()
		assert.NoError(t, svc.RemoveExchange(ctx, "TOKEN_A"))
	}()

	first := <-events
	second := <-events
	req.Equal(entity.ExchangeEventCreated, first.Type)
	req.Equal(entity.ExchangeEventRemoved, second.Type)
	req.False(second.OccurredAt.Before(first.OccurredAt))

	close(publisher.release)
	wg.Wait()

	req.Equal([]string{
		constant.ExchangeEventStreamSubjectCreated,
		constant.ExchangeEventStreamSubjectRemoved,
	}, publisher.subjects)

	_, ok := svc.GetExchangeByToken("TOKEN_A")
	req.False(ok)
}

func TestExchangeService_FactoryLabel(t *testing.T) {
	svc := NewExchangeService(NewExchangeRegistry(testServer, WithFactoryLabel("Derivex")))
	assert.Equal(t, "Derivex", svc.FactoryLabel())

	svc = NewExchangeService(NewExchangeRegistry(testServer))
	assert.Equal(t, entity.DefaultFactoryLabel, svc.FactoryLabel())
}
