package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/pricing"
)

func setupTestDB(t *testing.T) (*PostgresRepository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewPostgresRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func strp(s string) *string { return &s }

func sampleOrder(owner, gatewayOrderID string) *Order {
	now := time.Now()
	o := &Order{
		ID:    uuid.New(),
		Owner: owner,
		Items: []Item{
			{ProductID: 1, Name: "Steel Tiffin", Quantity: 5, UnitPrice: 100},
		},
		Subtotal:      500,
		ShippingCost:  80,
		Tax:           90,
		Total:         670,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
		Shipping:      ShippingDetails{Name: "A Kumar", Address: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if gatewayOrderID != "" {
		o.GatewayOrderID = strp(gatewayOrderID)
		o.GatewayPaymentID = strp("pay_" + gatewayOrderID)
	}
	return o
}

func TestCreateAndGetOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	o := sampleOrder("user-1", "gw-100")
	require.NoError(t, repo.CreateOrder(ctx, o))

	got, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Owner, got.Owner)
	assert.Equal(t, o.Total, got.Total)
	assert.Equal(t, StatusConfirmed, got.Status)
	require.NotNil(t, got.GatewayOrderID)
	assert.Equal(t, "gw-100", *got.GatewayOrderID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(100), got.Items[0].UnitPrice)
	assert.Equal(t, "Pune", got.Shipping.City)

	byGateway, err := repo.GetOrderByGatewayOrderID(ctx, "gw-100")
	require.NoError(t, err)
	assert.Equal(t, o.ID, byGateway.ID)
}

func TestDuplicateGatewayOrderIDIsRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	first := sampleOrder("user-1", "gw-dup")
	require.NoError(t, repo.CreateOrder(ctx, first))

	second := sampleOrder("user-1", "gw-dup")
	err := repo.CreateOrder(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	// The losing insert must leave no partial state: no second order row
	// and no second outbox event.
	orders, err := repo.ListOrdersByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestOrdersWithoutGatewayIDsDoNotCollide(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	a := sampleOrder("user-1", "")
	a.Status = StatusPending
	a.PaymentStatus = PaymentPending
	b := sampleOrder("user-1", "")
	b.Status = StatusPending
	b.PaymentStatus = PaymentPending

	require.NoError(t, repo.CreateOrder(ctx, a))
	require.NoError(t, repo.CreateOrder(ctx, b), "nullable natural keys must not collide")
}

func TestListOrdersByOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.CreateOrder(ctx, sampleOrder("user-1", "gw-1")))
	require.NoError(t, repo.CreateOrder(ctx, sampleOrder("user-1", "gw-2")))
	require.NoError(t, repo.CreateOrder(ctx, sampleOrder("user-2", "gw-3")))

	orders, err := repo.ListOrdersByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestStatusAndTrackingUpdates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	o := sampleOrder("user-1", "gw-5")
	require.NoError(t, repo.CreateOrder(ctx, o))

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, StatusShipped))
	require.NoError(t, repo.SetTrackingNumber(ctx, o.ID, "TRK-99"))

	got, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)
	require.NotNil(t, got.TrackingNumber)
	assert.Equal(t, "TRK-99", *got.TrackingNumber)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), StatusShipped), ErrOrderNotFound)
}

func TestOutboxLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	o := sampleOrder("user-1", "gw-outbox")
	require.NoError(t, repo.CreateOrder(ctx, o))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, o.ID.String(), events[0].AggregateID)
	assert.Equal(t, "order.created", events[0].EventType)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTotalsRoundTripAsIntegers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	totals := pricing.Totals{Subtotal: 10000, Shipping: 0, Tax: 1800, Total: 11800}
	o := sampleOrder("user-1", "gw-int")
	o.Subtotal = totals.Subtotal
	o.ShippingCost = totals.Shipping
	o.Tax = totals.Tax
	o.Total = totals.Total
	o.IsWholesaleOrder = true
	require.NoError(t, repo.CreateOrder(ctx, o))

	got, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Subtotal+got.ShippingCost+got.Tax, got.Total)
	assert.True(t, got.IsWholesaleOrder)
}
