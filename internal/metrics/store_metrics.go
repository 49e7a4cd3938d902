package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики витрины: заказы, продажи, состояние склада.
type StoreMetrics struct {
	// Счётчики заказов
	ordersPlaced prometheus.Counter
	ordersFailed prometheus.Counter

	// Продажи
	itemsSold    prometheus.Counter
	revenueMinor prometheus.Counter

	// Отказы покупки по причинам
	purchaseRejections *prometheus.CounterVec

	// Гистограмма времени обработки заказа
	orderDuration prometheus.Histogram

	// Складские события
	restocks  prometheus.Counter
	depleted  prometheus.Counter
	stockUnit prometheus.Gauge

	// Счётчики событий timeline/outbox
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter
}

// NewStoreMetrics создаёт новый экземпляр метрик витрины.
func NewStoreMetrics() *StoreMetrics {
	return newStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of successfully placed orders",
		}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_failed_total",
			Help: "Total number of orders rejected or aborted",
		}),
		itemsSold: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_items_sold_total",
			Help: "Total number of product units sold",
		}),
		revenueMinor: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_revenue_minor_total",
			Help: "Total revenue in minor currency units",
		}),
		purchaseRejections: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_purchase_rejections_total",
			Help: "Total number of rejected purchases grouped by reason",
		}, []string{"reason"}),
		orderDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_duration_seconds",
			Help:    "Duration of order processing in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		restocks: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_restocks_total",
			Help: "Total number of restock operations",
		}),
		depleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_products_depleted_total",
			Help: "Total number of products whose stock reached zero",
		}),
		stockUnit: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_stock_units",
			Help: "Current total number of units in the catalog",
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_timeline_events_total",
			Help: "Total number of stock timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Total number of events enqueued to the outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик успешных заказов.
func (m *StoreMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderFailed увеличивает счётчик неудачных заказов.
func (m *StoreMetrics) RecordOrderFailed() {
	m.ordersFailed.Inc()
}

// RecordItemsSold добавляет проданные единицы.
func (m *StoreMetrics) RecordItemsSold(qty int) {
	m.itemsSold.Add(float64(qty))
}

// RecordRevenue добавляет выручку в минимальных единицах.
func (m *StoreMetrics) RecordRevenue(amountMinor int64) {
	m.revenueMinor.Add(float64(amountMinor))
}

// RecordPurchaseRejected увеличивает счётчик отказов по причине.
func (m *StoreMetrics) RecordPurchaseRejected(reason string) {
	m.purchaseRejections.WithLabelValues(reason).Inc()
}

// RecordOrderDuration записывает время обработки заказа.
func (m *StoreMetrics) RecordOrderDuration(duration time.Duration) {
	m.orderDuration.Observe(duration.Seconds())
}

// RecordRestock увеличивает счётчик пополнений.
func (m *StoreMetrics) RecordRestock() {
	m.restocks.Inc()
}

// RecordDepleted увеличивает счётчик обнулившихся товаров.
func (m *StoreMetrics) RecordDepleted() {
	m.depleted.Inc()
}

// SetStockUnits выставляет текущий суммарный остаток каталога.
func (m *StoreMetrics) SetStockUnits(total int) {
	m.stockUnit.Set(float64(total))
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *StoreMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *StoreMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
