package checkout

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type testDeps struct {
	store    *domain.Store
	receipts domain.ReceiptRepository
	timeline domain.TimelineRepository
	outbox   domain.OutboxRepository
}

func newTestService(t *testing.T) (Service, testDeps) {
	t.Helper()

	macbook, err := domain.NewProduct("MacBook Air M2", 145000, 100)
	require.NoError(t, err)
	macbook.SetPromotion(domain.NewSecondHalfPrice("second one at half price"))

	earbuds, err := domain.NewProduct("Bose QuietComfort Earbuds", 25000, 500)
	require.NoError(t, err)
	earbuds.SetPromotion(domain.NewThirdOneFree("third one free"))

	license, err := domain.NewNonStockedProduct("Windows License", 12500)
	require.NoError(t, err)
	discount, err := domain.NewPercentDiscount("30% off", 30)
	require.NoError(t, err)
	license.SetPromotion(discount)

	shipping, err := domain.NewLimitedProduct("Shipping", 1000, 250, 1)
	require.NoError(t, err)

	deps := testDeps{
		store:    domain.NewStore([]domain.Product{macbook, earbuds, license, shipping}),
		receipts: memory.NewReceiptRepository(),
		timeline: memory.NewTimelineRepository(),
		outbox:   memory.NewOutboxRepository(),
	}

	logger := log.New()
	logger.SetLevel(log.ErrorLevel)
	svc := NewServiceWithoutMetrics(deps.store, deps.receipts, deps.timeline, deps.outbox, logger.WithField("component", "checkout-test"))

	return svc, deps
}

func TestPlaceOrder_Success(t *testing.T) {
	svc, deps := newTestService(t)

	receipt, err := svc.PlaceOrder([]OrderLineRequest{
		{ProductName: "MacBook Air M2", Qty: 3},
		{ProductName: "Bose QuietComfort Earbuds", Qty: 3},
	})
	require.NoError(t, err)

	// 2 * 145000 + 145000/2 = 362500; третий за 25000 бесплатно: 50000.
	require.Equal(t, int64(412500), receipt.TotalMinor)
	require.Len(t, receipt.Lines, 2)
	require.NotEmpty(t, receipt.ID)
	require.Equal(t, "second one at half price", receipt.Lines[0].Promotion)

	stored, err := deps.receipts.Get(receipt.ID)
	require.NoError(t, err)
	require.Equal(t, receipt.TotalMinor, stored.TotalMinor)

	macbook, err := deps.store.FindByName("MacBook Air M2")
	require.NoError(t, err)
	require.Equal(t, int32(97), macbook.Quantity())

	events, err := deps.timeline.List("MacBook Air M2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.StockEventPurchased, events[0].Type)
	require.Equal(t, int32(3), events[0].Qty)

	pending, err := deps.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, string(kafka.EventTypeOrderPlaced), pending[0].EventType)
	require.Equal(t, receipt.ID, pending[0].AggregateID)
}

func TestPlaceOrder_NonStockedWithDiscount(t *testing.T) {
	svc, _ := newTestService(t)

	receipt, err := svc.PlaceOrder([]OrderLineRequest{
		{ProductName: "Windows License", Qty: 2},
	})
	require.NoError(t, err)

	// 2 * 12500 со скидкой 30% = 17500.
	require.Equal(t, int64(17500), receipt.TotalMinor)
}

func TestPlaceOrder_EmptyLines(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(nil)
	require.ErrorIs(t, err, domain.ErrQtyInvalid)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	svc, deps := newTestService(t)

	_, err := svc.PlaceOrder([]OrderLineRequest{{ProductName: "PlayStation 5", Qty: 1}})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	receipts, err := deps.receipts.List(0)
	require.NoError(t, err)
	require.Empty(t, receipts)
}

func TestPlaceOrder_LimitExceededEmitsFailure(t *testing.T) {
	svc, deps := newTestService(t)

	_, err := svc.PlaceOrder([]OrderLineRequest{{ProductName: "Shipping", Qty: 2}})
	require.ErrorIs(t, err, domain.ErrPurchaseLimitExceeded)

	pending, err := deps.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, string(kafka.EventTypeOrderFailed), pending[0].EventType)
}

func TestPlaceOrder_PartialFailureKeepsDeductions(t *testing.T) {
	svc, deps := newTestService(t)

	_, err := svc.PlaceOrder([]OrderLineRequest{
		{ProductName: "MacBook Air M2", Qty: 1},
		{ProductName: "Shipping", Qty: 2},
	})
	require.ErrorIs(t, err, domain.ErrPurchaseLimitExceeded)

	// Отката нет: списание по первой позиции остаётся.
	macbook, err := deps.store.FindByName("MacBook Air M2")
	require.NoError(t, err)
	require.Equal(t, int32(99), macbook.Quantity())
}

func TestPlaceOrder_DepletionRecordedInTimeline(t *testing.T) {
	svc, deps := newTestService(t)

	pixel, err := domain.NewProduct("Google Pixel 7", 50000, 2)
	require.NoError(t, err)
	deps.store.Add(pixel)

	_, err = svc.PlaceOrder([]OrderLineRequest{{ProductName: "Google Pixel 7", Qty: 2}})
	require.NoError(t, err)
	require.False(t, pixel.IsActive())

	events, err := deps.timeline.List("Google Pixel 7")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.StockEventPurchased, events[0].Type)
	require.Equal(t, domain.StockEventDepleted, events[1].Type)
}

func TestRestock_ReactivatesProduct(t *testing.T) {
	svc, deps := newTestService(t)

	pixel, err := domain.NewProduct("Google Pixel 7", 50000, 1)
	require.NoError(t, err)
	deps.store.Add(pixel)

	_, err = svc.PlaceOrder([]OrderLineRequest{{ProductName: "Google Pixel 7", Qty: 1}})
	require.NoError(t, err)
	require.False(t, pixel.IsActive())

	restocked, err := svc.Restock("Google Pixel 7", 250)
	require.NoError(t, err)
	require.Equal(t, int32(250), restocked.Quantity())
	require.True(t, restocked.IsActive())

	events, err := deps.timeline.List("Google Pixel 7")
	require.NoError(t, err)
	require.Equal(t, domain.StockEventRestocked, events[len(events)-1].Type)
}

func TestRestock_InvalidQty(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Restock("MacBook Air M2", 0)
	require.ErrorIs(t, err, domain.ErrQtyInvalid)
}

func TestRestock_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Restock("PlayStation 5", 10)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSetPromotion_ChangesPricing(t *testing.T) {
	svc, deps := newTestService(t)

	discount, err := domain.NewPercentDiscount("50% off", 50)
	require.NoError(t, err)
	require.NoError(t, svc.SetPromotion("Shipping", discount))

	receipt, err := svc.PlaceOrder([]OrderLineRequest{{ProductName: "Shipping", Qty: 1}})
	require.NoError(t, err)
	require.Equal(t, int64(500), receipt.TotalMinor)

	events, err := deps.timeline.List("Shipping")
	require.NoError(t, err)
	require.Equal(t, domain.StockEventPromotionChanged, events[0].Type)
	require.Equal(t, "50% off", events[0].Reason)
}

func TestClearPromotion(t *testing.T) {
	svc, deps := newTestService(t)

	require.NoError(t, svc.ClearPromotion("MacBook Air M2"))

	receipt, err := svc.PlaceOrder([]OrderLineRequest{{ProductName: "MacBook Air M2", Qty: 2}})
	require.NoError(t, err)
	require.Equal(t, int64(290000), receipt.TotalMinor)

	events, err := deps.timeline.List("MacBook Air M2")
	require.NoError(t, err)
	require.Equal(t, "promotion cleared", events[0].Reason)
}

func TestListProducts_OnlyActive(t *testing.T) {
	svc, deps := newTestService(t)

	shipping, err := deps.store.FindByName("Shipping")
	require.NoError(t, err)
	shipping.Deactivate()

	products := svc.ListProducts()
	require.Len(t, products, 3)
	for _, product := range products {
		require.NotEqual(t, "Shipping", product.Name())
	}
}

func TestDescribeCatalog(t *testing.T) {
	svc, _ := newTestService(t)

	descriptions := svc.DescribeCatalog()
	require.Len(t, descriptions, 4)
	require.Contains(t, descriptions[0], "MacBook Air M2")
	require.Contains(t, descriptions[0], "1450.00")
}

func TestTotalQuantity_IncludesInactive(t *testing.T) {
	svc, deps := newTestService(t)

	shipping, err := deps.store.FindByName("Shipping")
	require.NoError(t, err)
	shipping.Deactivate()

	// 100 + 500 + 0 + 250, независимо от активности.
	require.Equal(t, 850, svc.TotalQuantity())
}

func TestGetReceipt_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetReceipt("missing")
	require.ErrorIs(t, err, domain.ErrReceiptNotFound)
}

func TestListReceipts_NewestFirst(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.PlaceOrder([]OrderLineRequest{{ProductName: "Shipping", Qty: 1}})
	require.NoError(t, err)
	second, err := svc.PlaceOrder([]OrderLineRequest{{ProductName: "MacBook Air M2", Qty: 1}})
	require.NoError(t, err)

	receipts, err := svc.ListReceipts(0)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	require.Equal(t, second.ID, receipts[0].ID)
	require.Equal(t, first.ID, receipts[1].ID)
}

func TestProductTimeline_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProductTimeline("")
	require.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = svc.ProductTimeline("PlayStation 5")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}
