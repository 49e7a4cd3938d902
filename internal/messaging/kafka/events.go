package kafka

import "time"

// EventType определяет тип события витрины.
type EventType string

const (
	// События заказов
	EventTypeOrderPlaced EventType = "order.placed"
	EventTypeOrderFailed EventType = "order.failed"

	// Складские события
	EventTypeStockDepleted    EventType = "stock.depleted"
	EventTypeStockRestocked   EventType = "stock.restocked"
	EventTypePromotionChanged EventType = "stock.promotion_changed"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "storefront.order.events"
	TopicStockEvents     = "storefront.stock.events"
	TopicDeadLetterQueue = "storefront.dlq"
)

// OrderPlacedEvent — событие успешно оформленного заказа.
type OrderPlacedEvent struct {
	EventType  EventType        `json:"event_type"`
	ReceiptID  string           `json:"receipt_id"`
	TotalMinor int64            `json:"total_minor"`
	Lines      []OrderEventLine `json:"lines"`
	Timestamp  time.Time        `json:"timestamp"`
}

// OrderEventLine — позиция заказа в событии.
type OrderEventLine struct {
	Product string `json:"product"`
	Qty     int32  `json:"qty"`
}

// StockEventPayload — событие изменения стока товара.
type StockEventPayload struct {
	EventType EventType `json:"event_type"`
	Product   string    `json:"product"`
	Qty       int32     `json:"qty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderPlacedEvent создаёт событие заказа.
func NewOrderPlacedEvent(receiptID string, totalMinor int64, lines []OrderEventLine) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		EventType:  EventTypeOrderPlaced,
		ReceiptID:  receiptID,
		TotalMinor: totalMinor,
		Lines:      lines,
		Timestamp:  time.Now().UTC(),
	}
}

// NewStockEvent создаёт складское событие.
func NewStockEvent(eventType EventType, product string, qty int32) *StockEventPayload {
	return &StockEventPayload{
		EventType: eventType,
		Product:   product,
		Qty:       qty,
		Timestamp: time.Now().UTC(),
	}
}
