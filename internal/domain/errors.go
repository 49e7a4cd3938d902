package domain

import "errors"

var (
	// Ошибка пустого имени товара при создании.
	ErrNameRequired = errors.New("product name is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного стартового количества.
	ErrQuantityNegative = errors.New("product quantity must be non-negative")
	// Ошибка процента скидки вне диапазона [0, 100].
	ErrPercentOutOfRange = errors.New("discount percent must be between 0 and 100")
	// Ошибка некорректного лимита покупки для limited-товара.
	ErrMaximumInvalid = errors.New("purchase maximum must be greater than zero")
	// Ошибка при некорректном количестве в покупке (<= 0).
	ErrQtyInvalid = errors.New("purchase qty must be greater than zero")
	// ErrProductInactive возвращается при покупке неактивного товара.
	ErrProductInactive = errors.New("product is inactive")
	// ErrInsufficientStock возвращается, когда запрошено больше, чем есть на складе.
	ErrInsufficientStock = errors.New("not enough quantity available")
	// ErrPurchaseLimitExceeded — превышен лимит покупки за одну транзакцию.
	ErrPurchaseLimitExceeded = errors.New("purchase qty exceeds per-order maximum")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrReceiptNotFound возвращается, если чек не найден в репозитории.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrReceiptExists сигнализирует о попытке сохранить чек с занятым ID.
	ErrReceiptExists = errors.New("receipt already exists")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// Ошибка отсутствующего idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// Ошибка отсутствующего хэша запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ переиспользован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key is used with a different request")
	// ErrIdempotencyKeyNotFound — запись по ключу отсутствует.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// IsInvalidArgument проверяет, относится ли ошибка к некорректным входным данным.
func IsInvalidArgument(err error) bool {
	for _, target := range []error{
		ErrNameRequired,
		ErrPriceNegative,
		ErrQuantityNegative,
		ErrPercentOutOfRange,
		ErrMaximumInvalid,
		ErrQtyInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPurchaseRejected проверяет, является ли ошибка отказом в покупке
// (неактивный товар, нехватка стока, превышение лимита).
func IsPurchaseRejected(err error) bool {
	return errors.Is(err, ErrProductInactive) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrPurchaseLimitExceeded)
}
