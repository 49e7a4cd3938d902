package domain

import "sync"

// OrderLine — одна позиция заказа: товар и количество к покупке.
type OrderLine struct {
	Product Product
	Qty     int32
}

// Store — агрегат каталога. Хранит товары в порядке добавления (он же
// порядок отображения) и оркестрирует многопозиционные заказы.
type Store struct {
	mu       sync.RWMutex
	products []Product
}

// NewStore создаёт магазин с начальным списком товаров.
func NewStore(products []Product) *Store {
	catalog := make([]Product, 0, len(products))
	catalog = append(catalog, products...)
	return &Store{products: catalog}
}

// Add добавляет товар в конец каталога.
func (s *Store) Add(product Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, product)
}

// Remove удаляет товар из каталога по тождеству ссылки.
// Возвращает ErrProductNotFound, если товара в каталоге нет.
func (s *Store) Remove(product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.products {
		if existing == product {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return ErrProductNotFound
}

// TotalQuantity возвращает суммарный остаток по всем товарам каталога,
// включая неактивные.
func (s *Store) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, product := range s.products {
		total += int(product.Quantity())
	}
	return total
}

// ActiveProducts возвращает активные товары, сохраняя порядок каталога.
func (s *Store) ActiveProducts() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Product, 0, len(s.products))
	for _, product := range s.products {
		if product.IsActive() {
			result = append(result, product)
		}
	}
	return result
}

// Products возвращает копию всего каталога в порядке добавления.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Product, len(s.products))
	copy(result, s.products)
	return result
}

// FindByName ищет товар по имени. Имя служит внешним идентификатором
// позиции каталога.
func (s *Store) FindByName(name string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, product := range s.products {
		if product.Name() == name {
			return product, nil
		}
	}
	return nil, ErrProductNotFound
}

// Order выполняет покупку по списку позиций и возвращает итоговую стоимость.
// Позиции обрабатываются строго последовательно; ошибка на k-й позиции
// прерывает заказ немедленно, при этом списания по позициям 1..k-1 остаются
// применёнными — отката нет. Весь заказ выполняется под одной блокировкой
// магазина, чтобы исключить чередование списаний с другими заказами.
func (s *Store) Order(lines []OrderLine) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totalMinor int64
	for _, line := range lines {
		lineTotal, err := line.Product.Buy(line.Qty)
		if err != nil {
			return 0, err
		}
		totalMinor += lineTotal
	}
	return totalMinor, nil
}
