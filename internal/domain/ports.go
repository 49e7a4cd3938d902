package domain

import "time"

// ReceiptRepository описывает требования к хранилищу чеков.
type ReceiptRepository interface {
	// Create сохраняет новый чек. Возвращает ошибку, если ID уже занят.
	Create(receipt Receipt) error
	// Get возвращает чек по идентификатору или ErrReceiptNotFound.
	Get(id string) (Receipt, error)
	// List возвращает чеки от новых к старым с опциональным лимитом.
	List(limit int) ([]Receipt, error)
}

// StockEventType определяет тип события складского таймлайна.
type StockEventType string

const (
	// StockEventPurchased — списание стока покупкой.
	StockEventPurchased StockEventType = "purchased"
	// StockEventRestocked — пополнение стока.
	StockEventRestocked StockEventType = "restocked"
	// StockEventDepleted — остаток обнулился, товар деактивирован.
	StockEventDepleted StockEventType = "depleted"
	// StockEventPromotionChanged — смена или снятие акции.
	StockEventPromotionChanged StockEventType = "promotion_changed"
)

// StockEvent — событие жизненного цикла позиции каталога.
type StockEvent struct {
	ProductName string
	Type        StockEventType
	Qty         int32
	Reason      string
	Occurred    time.Time
}

// TimelineRepository хранит события жизненного цикла товаров.
type TimelineRepository interface {
	Append(event StockEvent) error
	List(productName string) ([]StockEvent, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}
