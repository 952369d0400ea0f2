package exchange

import (
	"sort"
	"strings"

	"github.com/krobus00/derivex-service/internal/entity"
)

// ExchangeRegistry is a bidirectional index between token identifiers and the
// exchanges created for them. tokenToExchange and exchangeToToken are kept as
// exact inverses; they are only touched through link and unlink.
//
// The registry has a single owner and does no locking. Wrap it (see
// ExchangeService) when it is shared between goroutines.
type ExchangeRegistry struct {
	server       string
	factoryLabel string

	tokenToExchange map[string]entity.Exchange
	exchangeToToken map[entity.Exchange]string

	// idToToken is filled out-of-band and is never reconciled with the maps
	// above: an id can point at a token that was removed or never created.
	idToToken map[uint64]string
}

type RegistryOption func(*ExchangeRegistry)

func WithFactoryLabel(label string) RegistryOption {
	return func(r *ExchangeRegistry) {
		if strings.TrimSpace(label) != "" {
			r.factoryLabel = label
		}
	}
}

func NewExchangeRegistry(server string, opts ...RegistryOption) *ExchangeRegistry {
	r := &ExchangeRegistry{
		server:          server,
		factoryLabel:    entity.DefaultFactoryLabel,
		tokenToExchange: make(map[string]entity.Exchange),
		exchangeToToken: make(map[entity.Exchange]string),
		idToToken:       make(map[uint64]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *ExchangeRegistry) Server() string {
	return r.server
}

func (r *ExchangeRegistry) FactoryLabel() string {
	return r.factoryLabel
}

// CreateExchange registers a new exchange for token. Existing mappings are
// never overwritten; callers must remove a token before creating it again.
// On failure the registry is left untouched.
func (r *ExchangeRegistry) CreateExchange(token string) (entity.Exchange, error) {
	if strings.TrimSpace(token) == "" {
		return entity.Exchange{}, &RegistryError{Kind: KindInvalidToken, Token: token}
	}

	if _, ok := r.tokenToExchange[token]; ok {
		return entity.Exchange{}, &RegistryError{Kind: KindDuplicateToken, Token: token}
	}

	exchange := entity.NewExchange(token, r.factoryLabel, r.server)
	r.link(token, exchange)

	return exchange, nil
}

func (r *ExchangeRegistry) GetExchangeByToken(token string) (entity.Exchange, bool) {
	exchange, ok := r.tokenToExchange[token]
	return exchange, ok
}

func (r *ExchangeRegistry) GetTokenByExchange(exchange entity.Exchange) (string, bool) {
	token, ok := r.exchangeToToken[exchange]
	return token, ok
}

// RemoveExchange drops token and its exchange. Removing an absent token is a no-op.
func (r *ExchangeRegistry) RemoveExchange(token string) {
	r.unlink(token)
}

// AssignTokenID records id -> token in the auxiliary index, replacing any
// previous token for id.
func (r *ExchangeRegistry) AssignTokenID(id uint64, token string) {
	r.idToToken[id] = token
}

func (r *ExchangeRegistry) GetTokenByID(id uint64) (string, bool) {
	token, ok := r.idToToken[id]
	return token, ok
}

func (r *ExchangeRegistry) Len() int {
	return len(r.tokenToExchange)
}

// Exchanges returns every registered exchange ordered by token.
func (r *ExchangeRegistry) Exchanges() []entity.Exchange {
	exchanges := make([]entity.Exchange, 0, len(r.tokenToExchange))
	for _, exchange := range r.tokenToExchange {
		exchanges = append(exchanges, exchange)
	}

	sort.Slice(exchanges, func(i, j int) bool {
		return exchanges[i].Token() < exchanges[j].Token()
	})

	return exchanges
}

func (r *ExchangeRegistry) link(token string, exchange entity.Exchange) {
	r.tokenToExchange[token] = exchange
	r.exchangeToToken[exchange] = token
}

func (r *ExchangeRegistry) unlink(token string) {
	exchange, ok := r.tokenToExchange[token]
	if !ok {
		return
	}

	delete(r.tokenToExchange, token)
	delete(r.exchangeToToken, exchange)
}
