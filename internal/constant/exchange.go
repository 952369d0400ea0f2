package constant

import "time"

const (
	ExchangeEventQueueName  = "exchange_event_queue_journal"
	ExchangeEventQueueGroup = "exchange_event_journal_group"

	ExchangeEventStreamName           = "exchange"
	ExchangeEventStreamSubjectAll     = "exchange.*"
	ExchangeEventStreamSubjectCreated = "exchange.created"
	ExchangeEventStreamSubjectRemoved = "exchange.removed"

	ExchangeEventStreamMaxAge = 24 * time.Hour

	TokenIDCacheKeyPrefix = "derivex:token_id"
	TokenIDCacheTTL       = 1 * time.Hour
)
