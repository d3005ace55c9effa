package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

// DB exposes the underlying handle so the catalog reader can share the
// connection pool.
func (r *PostgresRepository) DB() *sql.DB {
	return r.db
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder inserts the order and its order.created outbox event in one
// transaction. The unique index on gateway_order_id makes the insert the
// atomic dedup point: a second writer gets ErrDuplicateOrder.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping details: %w", err)
	}
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders
	          (id, owner, items, subtotal, shipping_cost, tax, total, is_wholesale,
	           status, payment_status, gateway_order_id, gateway_payment_id, shipping, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, query,
		o.ID,
		o.Owner,
		itemsJSON,
		o.Subtotal,
		o.ShippingCost,
		o.Tax,
		o.Total,
		o.IsWholesaleOrder,
		o.Status,
		o.PaymentStatus,
		o.GatewayOrderID,
		o.GatewayPaymentID,
		shippingJSON)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	outboxQuery := `INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
	                VALUES ($1, $2, $3, NOW())`
	if _, err := tx.ExecContext(ctx, outboxQuery, o.ID.String(), "order.created", payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order transaction: %w", err)
	}
	return nil
}

const orderColumns = `id, owner, items, subtotal, shipping_cost, tax, total, is_wholesale,
	status, payment_status, gateway_order_id, gateway_payment_id, tracking_number, shipping, created_at, updated_at`

func (r *PostgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, gatewayOrderID))
}

func (r *PostgresRepository) ListOrdersByOwner(ctx context.Context, owner string) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE owner = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("query orders by owner: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireRow(result)
}

func (r *PostgresRepository) SetTrackingNumber(ctx context.Context, id uuid.UUID, trackingNumber string) error {
	query := `UPDATE orders SET tracking_number = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, trackingNumber)
	if err != nil {
		return fmt.Errorf("update tracking number: %w", err)
	}
	return requireRow(result)
}

func (r *PostgresRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events WHERE processed_at IS NULL
	          ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *PostgresRepository) MarkEventAsProcessed(ctx context.Context, eventID int64) error {
	query := `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOne(row rowScanner) (*Order, error) {
	var o Order
	var itemsJSON, shippingJSON []byte
	var gatewayOrderID, gatewayPaymentID, trackingNumber sql.NullString

	err := row.Scan(
		&o.ID,
		&o.Owner,
		&itemsJSON,
		&o.Subtotal,
		&o.ShippingCost,
		&o.Tax,
		&o.Total,
		&o.IsWholesaleOrder,
		&o.Status,
		&o.PaymentStatus,
		&gatewayOrderID,
		&gatewayPaymentID,
		&trackingNumber,
		&shippingJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &o.Shipping); err != nil {
		return nil, fmt.Errorf("unmarshal shipping details: %w", err)
	}
	if gatewayOrderID.Valid {
		o.GatewayOrderID = &gatewayOrderID.String
	}
	if gatewayPaymentID.Valid {
		o.GatewayPaymentID = &gatewayPaymentID.String
	}
	if trackingNumber.Valid {
		o.TrackingNumber = &trackingNumber.String
	}

	return &o, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
