package storage

import (
	"database/sql"
	"fmt"

	"huongque-storefront/storefront-svc/internal/domain"
)

// PostgresArchive mirrors finalized orders for reporting.
type PostgresArchive struct {
	DB *sql.DB
}

func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{DB: db}
}

func (r *PostgresArchive) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS store_orders (
			id TEXT PRIMARY KEY,
			order_number INTEGER NOT NULL,
			user_id TEXT,
			customer_name TEXT,
			customer_email TEXT,
			customer_phone TEXT,
			subtotal BIGINT NOT NULL,
			discount BIGINT NOT NULL,
			total BIGINT NOT NULL,
			status TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS store_order_items (
			order_id TEXT REFERENCES store_orders(id) ON DELETE CASCADE,
			dish_id TEXT NOT NULL,
			dish_name TEXT NOT NULL,
			unit_price BIGINT NOT NULL,
			quantity INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresArchive) ArchiveOrder(order *domain.Order) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO store_orders (id, order_number, user_id, customer_name, customer_email, customer_phone,
			subtotal, discount, total, status, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`, order.ID, order.OrderNumber, order.UserID, order.User.Name, order.User.Email, order.User.Phone,
		order.Subtotal, order.Discount, order.Total, string(order.Status), string(order.PaymentMethod),
		order.CreatedAt); err != nil {
		return err
	}

	for _, item := range order.Items {
		if _, err := tx.Exec(`
			INSERT INTO store_order_items (order_id, dish_id, dish_name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, item.ID, item.Name, item.UnitPrice, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit()
}
