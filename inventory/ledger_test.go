package inventory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopcore/shopcore/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()
	category := models.Category{Name: "general-" + name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := models.Product{Name: name, Price: price, Stock: stock, CategoryID: category.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func currentStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return product.Stock
}

func TestReserveAndDecrement(t *testing.T) {
	t.Run("decrements every line and snapshots prices", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		p1 := seedProduct(t, db, "keyboard", 49.99, 10)
		p2 := seedProduct(t, db, "mouse", 19.50, 5)

		reservations, err := ledger.ReserveAndDecrement(db, []Line{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p2.ID, Quantity: 5},
		}, nil)
		if err != nil {
			t.Fatalf("reserve: %v", err)
		}
		if len(reservations) != 2 {
			t.Fatalf("expected 2 reservations, got %d", len(reservations))
		}
		if reservations[0].UnitPrice != 49.99 || reservations[1].UnitPrice != 19.50 {
			t.Errorf("unexpected price snapshots: %+v", reservations)
		}
		if got := currentStock(t, db, p1.ID); got != 7 {
			t.Errorf("expected stock 7, got %d", got)
		}
		if got := currentStock(t, db, p2.ID); got != 0 {
			t.Errorf("expected stock 0, got %d", got)
		}
	})

	t.Run("unknown product rolls back the whole batch", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		p1 := seedProduct(t, db, "keyboard", 49.99, 10)

		_, err := ledger.ReserveAndDecrement(db, []Line{
			{ProductID: p1.ID, Quantity: 4},
			{ProductID: 9999, Quantity: 1},
		}, nil)

		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
		if notFound.ProductID != 9999 {
			t.Errorf("expected failing product 9999, got %d", notFound.ProductID)
		}
		if got := currentStock(t, db, p1.ID); got != 10 {
			t.Errorf("expected stock untouched at 10, got %d", got)
		}
	})

	t.Run("insufficient stock reports available and requested", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		p1 := seedProduct(t, db, "keyboard", 49.99, 2)

		_, err := ledger.ReserveAndDecrement(db, []Line{{ProductID: p1.ID, Quantity: 3}}, nil)

		var insufficient *InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.Available != 2 || insufficient.Requested != 3 {
			t.Errorf("unexpected error detail: %+v", insufficient)
		}
		if got := currentStock(t, db, p1.ID); got != 2 {
			t.Errorf("expected stock untouched at 2, got %d", got)
		}
	})

	t.Run("zero or negative quantity is rejected", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		p1 := seedProduct(t, db, "keyboard", 49.99, 10)

		for _, qty := range []int{0, -2} {
			_, err := ledger.ReserveAndDecrement(db, []Line{{ProductID: p1.ID, Quantity: qty}}, nil)
			var invalid *InvalidQuantityError
			if !errors.As(err, &invalid) {
				t.Fatalf("quantity %d: expected InvalidQuantityError, got %v", qty, err)
			}
		}
		if got := currentStock(t, db, p1.ID); got != 10 {
			t.Errorf("expected stock untouched at 10, got %d", got)
		}
	})

	t.Run("duplicate lines for one product draw from the same stock", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		p1 := seedProduct(t, db, "keyboard", 49.99, 5)

		_, err := ledger.ReserveAndDecrement(db, []Line{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p1.ID, Quantity: 3},
		}, nil)

		var insufficient *InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.Available != 2 {
			t.Errorf("expected 2 left after the first line, got %d", insufficient.Available)
		}
		if got := currentStock(t, db, p1.ID); got != 5 {
			t.Errorf("expected stock untouched at 5, got %d", got)
		}
	})

	t.Run("persist failure rolls back the decrements", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		p1 := seedProduct(t, db, "keyboard", 49.99, 10)

		boom := errors.New("storage blew up")
		_, err := ledger.ReserveAndDecrement(db, []Line{{ProductID: p1.ID, Quantity: 4}},
			func(tx *gorm.DB, reservations []Reservation) error {
				return boom
			})
		if !errors.Is(err, boom) {
			t.Fatalf("expected persist error, got %v", err)
		}
		if got := currentStock(t, db, p1.ID); got != 10 {
			t.Errorf("expected stock untouched at 10, got %d", got)
		}
	})
}

func TestReserveAndDecrementConcurrent(t *testing.T) {
	t.Run("two racing batches never oversell", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		p1 := seedProduct(t, db, "keyboard", 10.00, 3)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.ReserveAndDecrement(db, []Line{{ProductID: p1.ID, Quantity: 2}}, nil)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var successes, stockFailures int
		for err := range errs {
			switch {
			case err == nil:
				successes++
			default:
				var insufficient *InsufficientStockError
				if !errors.As(err, &insufficient) {
					t.Fatalf("unexpected error: %v", err)
				}
				stockFailures++
			}
		}
		if successes != 1 || stockFailures != 1 {
			t.Fatalf("expected exactly one winner, got %d successes and %d stock failures", successes, stockFailures)
		}
		if got := currentStock(t, db, p1.ID); got != 1 {
			t.Errorf("expected final stock 1, got %d", got)
		}
	})

	t.Run("committed quantities never exceed the starting stock", func(t *testing.T) {
		db := newTestDB(t)
		ledger := NewLedger()
		const start = 5
		const callers = 12
		p1 := seedProduct(t, db, "keyboard", 10.00, start)

		var wg sync.WaitGroup
		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.ReserveAndDecrement(db, []Line{{ProductID: p1.ID, Quantity: 1}}, nil)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var committed int
		for err := range errs {
			if err == nil {
				committed++
			}
		}
		if committed != start {
			t.Errorf("expected %d committed orders, got %d", start, committed)
		}
		if got := currentStock(t, db, p1.ID); got != 0 {
			t.Errorf("expected final stock 0, got %d", got)
		}
	})
}
