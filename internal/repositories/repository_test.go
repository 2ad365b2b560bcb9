package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"storefront/internal/config"
	"storefront/internal/infra"
	"storefront/internal/models/db_models"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
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

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, infra.MigrateUp(dsn))

	db, err := infra.InitPostgresql(&config.Config{DatabaseURL: dsn})
	require.NoError(t, err)

	cleanup := func() {
		infra.ClosePostgresql(db)
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, cleanup
}

func seedAccount(t *testing.T, db *gorm.DB, confirmed bool) uuid.UUID {
	t.Helper()
	account := db_models.Account{ID: uuid.New(), Email: "someone@example.com"}
	if confirmed {
		at := time.Now().Unix()
		account.EmailConfirmedAt = &at
	}
	require.NoError(t, db.Create(&account).Error)
	return account.ID
}

func newTestOrder(sessionID string) *db_models.Order {
	return &db_models.Order{
		StripeSessionID:  sessionID,
		Role:             db_models.RoleCustomer,
		AmountTotalCents: 2500,
		Currency:         "EUR",
		Status:           db_models.OrderStatusCreated,
	}
}

func TestEventRepository_RecordOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewEventRepository(db)

	exists, err := repo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, exists)

	created, err := repo.Record(ctx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Record(ctx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.False(t, created, "second insert of the same event must not win")

	exists, err = repo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, "evt_1"))
	exists, err = repo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOrderRepository_CreateAndReconcile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(db)

	order := newTestOrder("cs_test_1")
	require.NoError(t, repo.Create(ctx, order))

	err := repo.Create(ctx, newTestOrder("cs_test_1"))
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	userID := seedAccount(t, db, true)
	status := "paid"
	email := "buyer@example.com"
	update := newTestOrder("cs_test_1")
	update.UserID = &userID
	update.Status = db_models.OrderStatusPaid
	update.PaymentStatus = &status
	update.CustomerEmail = &email
	update.AmountTotalCents = 4200
	require.NoError(t, repo.UpdateReconciled(ctx, update))

	stored, err := repo.FindBySessionID(ctx, "cs_test_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, order.ID, stored.ID)
	assert.Equal(t, db_models.OrderStatusPaid, stored.Status)
	assert.Equal(t, int64(4200), stored.AmountTotalCents)
	require.NotNil(t, stored.CustomerEmail)
	assert.Equal(t, email, *stored.CustomerEmail)

	missing, err := repo.FindBySessionID(ctx, "cs_unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepository_ItemsAndOwnership(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(db)

	owner := seedAccount(t, db, true)
	order := newTestOrder("cs_items")
	order.UserID = &owner
	require.NoError(t, repo.Create(ctx, order))

	has, err := repo.HasItems(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, has)

	productID := uuid.New()
	written, err := repo.InsertItemsOnce(ctx, order.ID, []db_models.OrderItem{
		{OrderID: order.ID, ProductID: &productID, NameSnapshot: "Olio EVO 500ml", UnitAmountCents: 1250, Qty: 2, Currency: "EUR"},
		{OrderID: order.ID, NameSnapshot: "Spedizione", UnitAmountCents: 0, Qty: 1, Currency: "EUR"},
	})
	require.NoError(t, err)
	assert.True(t, written)

	has, err = repo.HasItems(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, has)

	items, err := repo.ListItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	found, err := repo.FindForUser(ctx, "cs_items", owner)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Len(t, found.Items, 2)

	other, err := repo.FindForUser(ctx, "cs_items", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other, "orders are only visible to their owner")
}

func TestOrderRepository_StatusNeverLeavesTerminalState(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(db)
	require.NoError(t, repo.Create(ctx, newTestOrder("cs_terminal")))

	paid := "paid"
	toPaid := newTestOrder("cs_terminal")
	toPaid.Status = db_models.OrderStatusPaid
	toPaid.PaymentStatus = &paid
	require.NoError(t, repo.UpdateReconciled(ctx, toPaid))

	unpaid := "unpaid"
	late := newTestOrder("cs_terminal")
	late.PaymentStatus = &unpaid
	late.AmountTotalCents = 3100
	require.NoError(t, repo.UpdateReconciled(ctx, late))

	stored, err := repo.FindBySessionID(ctx, "cs_terminal")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, db_models.OrderStatusPaid, stored.Status)
	require.NotNil(t, stored.PaymentStatus)
	assert.Equal(t, "paid", *stored.PaymentStatus)
	// Non-status fields still follow the latest event.
	assert.Equal(t, int64(3100), stored.AmountTotalCents)
}

func TestOrderRepository_ConcurrentItemWritesOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(db)
	order := newTestOrder("cs_race")
	require.NoError(t, repo.Create(ctx, order))

	const writers = 4
	var wg sync.WaitGroup
	results := make([]bool, writers)
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.InsertItemsOnce(ctx, order.ID, []db_models.OrderItem{
				{OrderID: order.ID, NameSnapshot: "Olio EVO 500ml", UnitAmountCents: 1250, Qty: 2, Currency: "EUR"},
				{OrderID: order.ID, NameSnapshot: "Passata", UnitAmountCents: 450, Qty: 3, Currency: "EUR"},
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		if results[i] {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	items, err := repo.ListItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestOrderRepository_ClaimNotification(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewOrderRepository(db)

	order := newTestOrder("cs_claim")
	require.NoError(t, repo.Create(ctx, order))

	won, err := repo.ClaimNotification(ctx, order.ID, NotifyTeam, time.Now().Unix())
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.ClaimNotification(ctx, order.ID, NotifyTeam, time.Now().Unix())
	require.NoError(t, err)
	assert.False(t, won)

	// The customer column is independent of the team column.
	won, err = repo.ClaimNotification(ctx, order.ID, NotifyCustomer, time.Now().Unix())
	require.NoError(t, err)
	assert.True(t, won)

	require.NoError(t, repo.ReleaseNotification(ctx, order.ID, NotifyTeam))
	won, err = repo.ClaimNotification(ctx, order.ID, NotifyTeam, time.Now().Unix())
	require.NoError(t, err)
	assert.True(t, won)

	_, err = repo.ClaimNotification(ctx, order.ID, NotificationKind("status; DROP TABLE orders"), 1)
	assert.Error(t, err)
}

func TestProfileRepository_SetRoleUpserts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewProfileRepository(db)
	userID := seedAccount(t, db, true)

	role, err := repo.FindRole(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, db_models.Role(""), role)

	require.NoError(t, repo.SetRole(ctx, userID, db_models.RoleCustomer))
	require.NoError(t, repo.SetRole(ctx, userID, db_models.RoleRetailer))

	role, err = repo.FindRole(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, db_models.RoleRetailer, role)
}

func TestProductRepository_ActiveOnly(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewProductRepository(db)

	second := db_models.Product{Name: "Passata", PriceCents: 450, Currency: "EUR", SortOrder: 2}
	first := db_models.Product{Name: "Olio", PriceCents: 1250, Currency: "EUR", SortOrder: 1}
	hidden := db_models.Product{Name: "Fuori stagione", PriceCents: 900, Currency: "EUR", SortOrder: 0}
	for _, p := range []*db_models.Product{&second, &first, &hidden} {
		require.NoError(t, db.Create(p).Error)
	}
	// Active defaults to true on insert, so deactivate explicitly.
	require.NoError(t, db.Model(&hidden).Update("active", false).Error)

	products, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Olio", products[0].Name)
	assert.Equal(t, "Passata", products[1].Name)

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{first.ID, hidden.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	got, err := repo.FindByID(ctx, hidden.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Active)
}

func TestRetailerApplicationRepository_UpsertAndStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewRetailerApplicationRepository(db)
	userID := uuid.New()

	app := &db_models.RetailerApplication{
		UserID:         userID,
		CompanyName:    "Bottega Srl",
		VatNumber:      "IT01234567890",
		BillingCountry: "IT",
		Status:         db_models.ApplicationPending,
	}
	require.NoError(t, repo.Upsert(ctx, app))

	resubmit := &db_models.RetailerApplication{
		UserID:         userID,
		CompanyName:    "Bottega Nuova Srl",
		VatNumber:      "IT01234567890",
		BillingCountry: "IT",
		Status:         db_models.ApplicationPending,
	}
	require.NoError(t, repo.Upsert(ctx, resubmit))

	approvedAt := time.Now().Unix()
	require.NoError(t, repo.UpdateStatus(ctx, userID, db_models.ApplicationApproved, nil, &approvedAt))

	stored, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Bottega Nuova Srl", stored.CompanyName)
	assert.Equal(t, db_models.ApplicationApproved, stored.Status)
	require.NotNil(t, stored.ApprovedAt)

	var count int64
	require.NoError(t, db.Model(&db_models.RetailerApplication{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestContactAndAccountRepositories(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewContactRepository(db)
	msg := &db_models.ContactMessage{Name: "Anna", Email: "anna@example.com", Subject: "Info", Message: "Ciao"}
	require.NoError(t, repo.Insert(context.Background(), msg))
	assert.NotEqual(t, uuid.Nil, msg.ID)

	account := NewAccountRepository(db)
	missing, err := account.FindById(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
