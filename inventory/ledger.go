package inventory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopcore/shopcore/models"
)

// Line is a (product id, quantity) pair requested by an order.
type Line struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// Reservation is the outcome of a successfully reserved line: the product row
// as it looked inside the transaction and the unit price captured at that
// moment. Order items must be built from these snapshots, never from a later
// re-read of the product.
type Reservation struct {
	Product   models.Product
	Quantity  int
	UnitPrice float64
}

type NotFoundError struct {
	ProductID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("inventory: product %d not found", e.ProductID)
}

type InvalidQuantityError struct {
	ProductID uint
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("inventory: quantity for product %d must be greater than zero", e.ProductID)
}

type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %d (available %d, requested %d)",
		e.ProductID, e.Available, e.Requested)
}

// Ledger serializes stock mutations per product. Every reserve-and-decrement
// runs under the in-process locks of the products it touches and, inside the
// database transaction, under row-level locks. The in-process locks make the
// never-below-zero contract independent of the backend's locking behavior.
type Ledger struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewLedger() *Ledger {
	return &Ledger{locks: make(map[uint]*sync.Mutex)}
}

func (l *Ledger) lockFor(productID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[productID] = m
	}
	return m
}

// acquire locks the given products in ascending id order so that two batches
// sharing products can never deadlock, and returns the matching release.
func (l *Ledger) acquire(lines []Line) func() {
	seen := make(map[uint]bool, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		m := l.lockFor(id)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// ReserveAndDecrement checks and decrements stock for every line, or for none
// of them. Lines are validated in the order the caller supplied them; the
// first failing line determines the returned error and rolls back the whole
// batch. The optional persist callback runs inside the same transaction, after
// every decrement succeeded, so callers can commit dependent rows (the order
// and its items) atomically with the stock change; a persist error rolls the
// decrements back too.
func (l *Ledger) ReserveAndDecrement(db *gorm.DB, lines []Line, persist func(tx *gorm.DB, reservations []Reservation) error) ([]Reservation, error) {
	if len(lines) == 0 {
		return nil, errors.New("inventory: no lines to reserve")
	}

	release := l.acquire(lines)
	defer release()

	var reservations []Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		reservations = make([]Reservation, 0, len(lines))
		for _, line := range lines {
			if line.Quantity <= 0 {
				return &InvalidQuantityError{ProductID: line.ProductID}
			}

			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{ProductID: line.ProductID}
				}
				return err
			}

			if product.Stock < line.Quantity {
				return &InsufficientStockError{
					ProductID: line.ProductID,
					Available: product.Stock,
					Requested: line.Quantity,
				}
			}

			product.Stock -= line.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			reservations = append(reservations, Reservation{
				Product:   product,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
		}

		if persist != nil {
			return persist(tx, reservations)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}
