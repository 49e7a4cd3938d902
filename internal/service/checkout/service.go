package checkout

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// OrderLineRequest — позиция заказа на входе сервиса.
type OrderLineRequest struct {
	ProductName string
	Qty         int32
}

// Service описывает операции витрины поверх доменного магазина.
type Service interface {
	ListProducts() []domain.Product
	DescribeCatalog() []string
	TotalQuantity() int
	PlaceOrder(lines []OrderLineRequest) (domain.Receipt, error)
	Restock(productName string, qty int32) (domain.Product, error)
	SetPromotion(productName string, promo domain.Promotion) error
	ClearPromotion(productName string) error
	GetReceipt(id string) (domain.Receipt, error)
	ListReceipts(limit int) ([]domain.Receipt, error)
	ProductTimeline(productName string) ([]domain.StockEvent, error)
}

// service связывает магазин, хранилища и публикацию событий.
type service struct {
	store         *domain.Store
	receipts      domain.ReceiptRepository
	timeline      domain.TimelineRepository
	outbox        domain.OutboxRepository
	logger        *log.Entry
	metrics       *metrics.StoreMetrics
	kafkaProducer *kafka.Producer // опциональный producer для складских событий
}

// NewService создаёт рабочий экземпляр сервиса витрины.
func NewService(
	store *domain.Store,
	receipts domain.ReceiptRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &service{
		store:    store,
		receipts: receipts,
		timeline: timeline,
		outbox:   outbox,
		logger:   logger,
		metrics:  metrics.NewStoreMetrics(),
	}
}

// NewServiceWithKafka создаёт сервис с Kafka producer для складских событий.
func NewServiceWithKafka(
	store *domain.Store,
	receipts domain.ReceiptRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &service{
		store:         store,
		receipts:      receipts,
		timeline:      timeline,
		outbox:        outbox,
		logger:        logger,
		metrics:       metrics.NewStoreMetrics(),
		kafkaProducer: kafkaProducer,
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	store *domain.Store,
	receipts domain.ReceiptRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &service{
		store:    store,
		receipts: receipts,
		timeline: timeline,
		outbox:   outbox,
		logger:   logger,
	}
}

// ListProducts возвращает только активные позиции в порядке добавления.
func (s *service) ListProducts() []domain.Product {
	return s.store.ActiveProducts()
}

// DescribeCatalog возвращает описания активных позиций каталога.
func (s *service) DescribeCatalog() []string {
	products := s.store.ActiveProducts()
	descriptions := make([]string, 0, len(products))
	for _, product := range products {
		descriptions = append(descriptions, product.Describe())
	}
	return descriptions
}

// TotalQuantity возвращает суммарный остаток по всем позициям, включая неактивные.
func (s *service) TotalQuantity() int {
	return s.store.TotalQuantity()
}

// PlaceOrder выполняет заказ и фиксирует чек. Заказ best-effort: при ошибке
// на k-й позиции списания по предыдущим позициям остаются применёнными.
func (s *service) PlaceOrder(lines []OrderLineRequest) (domain.Receipt, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOrderDuration(time.Since(start))
		}
	}()

	if len(lines) == 0 {
		s.rejectOrder(domain.ErrQtyInvalid)
		return domain.Receipt{}, domain.ErrQtyInvalid
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	receiptLines := make([]domain.ReceiptLine, 0, len(lines))
	for _, line := range lines {
		product, err := s.store.FindByName(line.ProductName)
		if err != nil {
			s.logger.WithField("product", line.ProductName).Warn("product not found for order")
			s.rejectOrder(err)
			return domain.Receipt{}, err
		}
		var promoName string
		if promo := product.Promotion(); promo != nil {
			promoName = promo.Name()
		}
		orderLines = append(orderLines, domain.OrderLine{Product: product, Qty: line.Qty})
		receiptLines = append(receiptLines, domain.ReceiptLine{
			ProductName:    product.Name(),
			Qty:            line.Qty,
			UnitPriceMinor: product.PriceMinor(),
			Promotion:      promoName,
		})
	}

	totalMinor, err := s.store.Order(orderLines)
	if err != nil {
		s.logger.WithError(err).Warn("order rejected")
		s.rejectOrder(err)
		s.emitOrderFailed(lines, err)
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		ID:         uuid.NewString(),
		Lines:      receiptLines,
		TotalMinor: totalMinor,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.receipts.Create(receipt); err != nil {
		s.logger.WithError(err).WithField("receipt_id", receipt.ID).Error("failed to persist receipt")
		return domain.Receipt{}, err
	}

	var itemsSold int
	for _, line := range orderLines {
		itemsSold += int(line.Qty)
		s.appendTimeline(domain.StockEvent{
			ProductName: line.Product.Name(),
			Type:        domain.StockEventPurchased,
			Qty:         line.Qty,
			Occurred:    receipt.CreatedAt,
		})
		if !line.Product.IsActive() && line.Product.Quantity() == 0 {
			s.appendTimeline(domain.StockEvent{
				ProductName: line.Product.Name(),
				Type:        domain.StockEventDepleted,
				Reason:      "stock depleted",
				Occurred:    receipt.CreatedAt,
			})
			if s.metrics != nil {
				s.metrics.RecordDepleted()
			}
			s.publishStockEvent(kafka.EventTypeStockDepleted, line.Product.Name(), 0)
		}
	}

	s.emitOrderPlaced(receipt)

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordItemsSold(itemsSold)
		s.metrics.RecordRevenue(totalMinor)
		s.metrics.SetStockUnits(s.store.TotalQuantity())
	}

	s.logger.WithFields(log.Fields{
		"receipt_id":  receipt.ID,
		"lines":       len(receipt.Lines),
		"total_minor": receipt.TotalMinor,
	}).Info("order placed")

	return receipt, nil
}

// Restock пополняет остаток и заново активирует позицию.
func (s *service) Restock(productName string, qty int32) (domain.Product, error) {
	if qty <= 0 {
		return nil, domain.ErrQtyInvalid
	}

	product, err := s.store.FindByName(productName)
	if err != nil {
		return nil, err
	}

	product.SetQuantity(product.Quantity() + qty)
	product.Activate()

	s.appendTimeline(domain.StockEvent{
		ProductName: product.Name(),
		Type:        domain.StockEventRestocked,
		Qty:         qty,
		Occurred:    time.Now().UTC(),
	})
	if s.metrics != nil {
		s.metrics.RecordRestock()
		s.metrics.SetStockUnits(s.store.TotalQuantity())
	}
	s.publishStockEvent(kafka.EventTypeStockRestocked, product.Name(), product.Quantity())

	s.logger.WithFields(log.Fields{
		"product": product.Name(),
		"qty":     qty,
	}).Info("product restocked")

	return product, nil
}

// SetPromotion прикрепляет акцию к позиции каталога.
func (s *service) SetPromotion(productName string, promo domain.Promotion) error {
	product, err := s.store.FindByName(productName)
	if err != nil {
		return err
	}

	product.SetPromotion(promo)

	reason := "promotion cleared"
	if promo != nil {
		reason = promo.Name()
	}
	s.appendTimeline(domain.StockEvent{
		ProductName: product.Name(),
		Type:        domain.StockEventPromotionChanged,
		Qty:         product.Quantity(),
		Reason:      reason,
		Occurred:    time.Now().UTC(),
	})
	s.publishStockEvent(kafka.EventTypePromotionChanged, product.Name(), product.Quantity())

	s.logger.WithFields(log.Fields{
		"product":   product.Name(),
		"promotion": reason,
	}).Info("promotion changed")

	return nil
}

// ClearPromotion снимает акцию с позиции каталога.
func (s *service) ClearPromotion(productName string) error {
	return s.SetPromotion(productName, nil)
}

// GetReceipt возвращает чек по идентификатору.
func (s *service) GetReceipt(id string) (domain.Receipt, error) {
	return s.receipts.Get(id)
}

// ListReceipts возвращает чеки от новых к старым.
func (s *service) ListReceipts(limit int) ([]domain.Receipt, error) {
	return s.receipts.List(limit)
}

// ProductTimeline возвращает события жизненного цикла позиции.
func (s *service) ProductTimeline(productName string) ([]domain.StockEvent, error) {
	if productName == "" {
		return nil, domain.ErrNameRequired
	}
	if _, err := s.store.FindByName(productName); err != nil {
		return nil, err
	}
	return s.timeline.List(productName)
}

// rejectOrder фиксирует отказ заказа в метриках.
func (s *service) rejectOrder(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOrderFailed()
	s.metrics.RecordPurchaseRejected(rejectionReason(err))
}

// rejectionReason сводит доменные ошибки к меткам метрики отказов.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductInactive):
		return "inactive"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrPurchaseLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, domain.ErrProductNotFound):
		return "not_found"
	case domain.IsInvalidArgument(err):
		return "invalid_argument"
	default:
		return "internal"
	}
}

// emitOrderPlaced кладёт событие успешного заказа в transactional outbox.
func (s *service) emitOrderPlaced(receipt domain.Receipt) {
	lines := make([]kafka.OrderEventLine, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		lines = append(lines, kafka.OrderEventLine{Product: line.ProductName, Qty: line.Qty})
	}
	event := kafka.NewOrderPlacedEvent(receipt.ID, receipt.TotalMinor, lines)

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("receipt_id", receipt.ID).Error("marshal order event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   receipt.ID,
		EventType:     string(kafka.EventTypeOrderPlaced),
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithField("receipt_id", receipt.ID).Error("enqueue order event failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

// emitOrderFailed кладёт событие отказа заказа в transactional outbox.
func (s *service) emitOrderFailed(lines []OrderLineRequest, rootErr error) {
	payload := map[string]interface{}{
		"event_type": string(kafka.EventTypeOrderFailed),
		"reason":     rootErr.Error(),
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
	}
	products := make([]string, 0, len(lines))
	for _, line := range lines {
		products = append(products, line.ProductName)
	}
	payload["products"] = products

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).Error("marshal order failed event")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   uuid.NewString(),
		EventType:     string(kafka.EventTypeOrderFailed),
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).Error("enqueue order failed event")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

// appendTimeline добавляет событие в таймлайн позиции.
func (s *service) appendTimeline(event domain.StockEvent) {
	if s.timeline == nil {
		return
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"product": event.ProductName,
			"event":   event.Type,
		}).Warn("append timeline event failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}

// publishStockEvent публикует складское событие в Kafka (если producer настроен).
func (s *service) publishStockEvent(eventType kafka.EventType, productName string, qty int32) {
	if s.kafkaProducer == nil {
		return
	}

	event := kafka.NewStockEvent(eventType, productName, qty)
	if err := s.kafkaProducer.PublishEvent(kafka.TopicStockEvents, productName, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"product":    productName,
		}).Warn("failed to publish stock event to kafka")
	}
}

var _ Service = (*service)(nil)
