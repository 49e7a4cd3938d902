package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store        *domain.Store
	ReceiptRepo  domain.ReceiptRepository
	TimelineRepo domain.TimelineRepository
	OutboxRepo   domain.OutboxRepository
	IdemRepo     domain.IdempotencyRepository
	Logger       *log.Entry
}

// NewDependencies создаёт зависимости приложения с in-memory хранилищами и
// стартовым каталогом.
func NewDependencies(logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	store, err := seedCatalog()
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Store:        store,
		ReceiptRepo:  memory.NewReceiptRepository(),
		TimelineRepo: memory.NewTimelineRepository(),
		OutboxRepo:   memory.NewOutboxRepository(),
		IdemRepo:     memory.NewIdempotencyRepository(),
		Logger:       logger,
	}, nil
}
