package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// receiptRecord хранит чек вместе с порядковым номером вставки: он даёт
// устойчивую сортировку от новых к старым даже при равных CreatedAt.
type receiptRecord struct {
	receipt domain.Receipt
	seq     uint64
}

// receiptRepositoryInMemory — простая in-memory реализация ReceiptRepository.
type receiptRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[string]receiptRecord
	nextSeq uint64
}

// NewReceiptRepository возвращает in-memory репозиторий чеков.
func NewReceiptRepository() domain.ReceiptRepository {
	return &receiptRepositoryInMemory{
		items: make(map[string]receiptRecord),
	}
}

// Create сохраняет новый чек, если ID ещё не занят.
func (r *receiptRepositoryInMemory) Create(receipt domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[receipt.ID]; exists {
		return domain.ErrReceiptExists
	}
	// Сохраняем копию с собственным слайсом позиций, чтобы избежать
	// непредсказуемых мутаций извне.
	r.nextSeq++
	r.items[receipt.ID] = receiptRecord{receipt: cloneReceipt(receipt), seq: r.nextSeq}
	return nil
}

// Get возвращает чек или ErrReceiptNotFound, если его нет.
func (r *receiptRepositoryInMemory) Get(id string) (domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[id]
	if !ok {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}
	return cloneReceipt(record.receipt), nil
}

// List возвращает чеки от новых к старым, ограничивая выборку limit (если >0).
func (r *receiptRepositoryInMemory) List(limit int) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]receiptRecord, 0, len(r.items))
	for _, record := range r.items {
		records = append(records, record)
	}

	// Порядок вставки монотонен, в отличие от CreatedAt с точностью часов.
	sort.Slice(records, func(i, j int) bool {
		return records[i].seq > records[j].seq
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	result := make([]domain.Receipt, 0, len(records))
	for _, record := range records {
		result = append(result, cloneReceipt(record.receipt))
	}
	return result, nil
}

func cloneReceipt(src domain.Receipt) domain.Receipt {
	dst := src
	dst.Lines = append([]domain.ReceiptLine(nil), src.Lines...)
	return dst
}

var _ domain.ReceiptRepository = (*receiptRepositoryInMemory)(nil)
