package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"storefront/internal/models/db_models"
	"storefront/internal/repositories"
)

// MockIdentity implements IdentityService with fixed answers.
type MockIdentity struct {
	Caller      *Caller
	AuthErr     error
	StoredEmail string
	LookupErr   error
	AuthCalls   int
}

func (m *MockIdentity) Authenticate(_ context.Context, _ string) (*Caller, error) {
	m.AuthCalls++
	return m.Caller, m.AuthErr
}

func (m *MockIdentity) LookupEmail(_ context.Context, _ uuid.UUID) (string, error) {
	return m.StoredEmail, m.LookupErr
}

type MockProfileRepo struct {
	Roles   map[uuid.UUID]db_models.Role
	FindErr error
	SetErr  error
	SetCall int
}

func (m *MockProfileRepo) FindRole(_ context.Context, userID uuid.UUID) (db_models.Role, error) {
	if m.FindErr != nil {
		return "", m.FindErr
	}
	return m.Roles[userID], nil
}

func (m *MockProfileRepo) SetRole(_ context.Context, userID uuid.UUID, role db_models.Role) error {
	m.SetCall++
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Roles == nil {
		m.Roles = map[uuid.UUID]db_models.Role{}
	}
	m.Roles[userID] = role
	return nil
}

type MockProductRepo struct {
	Products  []db_models.Product
	Err       error
	ListCalls int
}

func (m *MockProductRepo) ListActive(_ context.Context) ([]db_models.Product, error) {
	m.ListCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	var out []db_models.Product
	for _, p := range m.Products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProductRepo) FindByID(_ context.Context, id uuid.UUID) (*db_models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MockProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []db_models.Product
	for _, p := range m.Products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockProcessor implements PaymentProcessor and records the last request.
type MockProcessor struct {
	mu          sync.Mutex
	Created     *CreatedSession
	CreateErr   error
	LastRequest *SessionRequest
	CreateCalls int

	LineItems []ProcessorLineItem
	LineErr   error
	LineCalls int
	Event     *PaymentEvent
	VerifyErr error
}

func (m *MockProcessor) CreateSession(_ context.Context, req SessionRequest) (*CreatedSession, error) {
	m.CreateCalls++
	m.LastRequest = &req
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Created, nil
}

func (m *MockProcessor) ListLineItems(_ context.Context, _ string) ([]ProcessorLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LineCalls++
	return m.LineItems, m.LineErr
}

func (m *MockProcessor) VerifyEvent(_ []byte, _ string) (*PaymentEvent, error) {
	return m.Event, m.VerifyErr
}

// MockEventRepo is an in-memory processed-event set.
type MockEventRepo struct {
	mu        sync.Mutex
	Seen      map[string]bool
	RecordErr error
	Deleted   []string
}

func (m *MockEventRepo) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Seen[id], nil
}

func (m *MockEventRepo) Record(_ context.Context, id, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return false, m.RecordErr
	}
	if m.Seen == nil {
		m.Seen = map[string]bool{}
	}
	if m.Seen[id] {
		return false, nil
	}
	m.Seen[id] = true
	return true, nil
}

func (m *MockEventRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Seen, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

// MockOrderRepo keeps orders keyed by session id and counts writes.
type MockOrderRepo struct {
	mu        sync.Mutex
	Orders    map[string]*db_models.Order
	Items     map[uuid.UUID][]db_models.OrderItem
	Claims    map[string]bool
	Writes    int
	CreateErr error
	ItemsErr  error
	ClaimErr  error

	// HasItemsBarrier, when set, holds every HasItems caller until all
	// expected callers have arrived.
	HasItemsBarrier *sync.WaitGroup
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		Orders: map[string]*db_models.Order{},
		Items:  map[uuid.UUID][]db_models.OrderItem{},
		Claims: map[string]bool{},
	}
}

func (m *MockOrderRepo) Create(_ context.Context, order *db_models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.Orders[order.StripeSessionID]; ok {
		return repositories.ErrDuplicateOrder
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	cp := *order
	m.Orders[order.StripeSessionID] = &cp
	m.Writes++
	return nil
}

func (m *MockOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*db_models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) UpdateReconciled(_ context.Context, order *db_models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Orders[order.StripeSessionID]
	if !ok {
		return nil
	}
	cp := *order
	cp.ID = existing.ID
	if existing.Status != db_models.OrderStatusCreated {
		cp.Status = existing.Status
		cp.PaymentStatus = existing.PaymentStatus
	}
	m.Orders[order.StripeSessionID] = &cp
	m.Writes++
	return nil
}

func (m *MockOrderRepo) FindForUser(_ context.Context, sessionID string, userID uuid.UUID) (*db_models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[sessionID]
	if !ok || o.UserID == nil || *o.UserID != userID {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]db_models.OrderItem(nil), m.Items[o.ID]...)
	return &cp, nil
}

func (m *MockOrderRepo) HasItems(_ context.Context, orderID uuid.UUID) (bool, error) {
	if m.HasItemsBarrier != nil {
		m.HasItemsBarrier.Done()
		m.HasItemsBarrier.Wait()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Items[orderID]) > 0, nil
}

func (m *MockOrderRepo) InsertItemsOnce(_ context.Context, orderID uuid.UUID, items []db_models.OrderItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ItemsErr != nil {
		return false, m.ItemsErr
	}
	if len(m.Items[orderID]) > 0 || len(items) == 0 {
		return false, nil
	}
	m.Items[orderID] = append([]db_models.OrderItem(nil), items...)
	m.Writes++
	return true, nil
}

func (m *MockOrderRepo) ListItems(_ context.Context, orderID uuid.UUID) ([]db_models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]db_models.OrderItem(nil), m.Items[orderID]...), nil
}

func (m *MockOrderRepo) ClaimNotification(_ context.Context, orderID uuid.UUID, kind repositories.NotificationKind, _ int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClaimErr != nil {
		return false, m.ClaimErr
	}
	key := orderID.String() + string(kind)
	if m.Claims[key] {
		return false, nil
	}
	m.Claims[key] = true
	return true, nil
}

func (m *MockOrderRepo) ReleaseNotification(_ context.Context, orderID uuid.UUID, kind repositories.NotificationKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Claims, orderID.String()+string(kind))
	return nil
}

// MockMailer records every send and can be told to fail.
type MockMailer struct {
	mu             sync.Mutex
	Err            error
	TeamOrders     []string
	Confirmations  []string
	Outcomes       []db_models.ApplicationStatus
	RetailerTeam   int
	ContactNotices []string
}

func (m *MockMailer) SendOrderTeamNotification(_ context.Context, to string, _ *db_models.Order, _ []db_models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TeamOrders = append(m.TeamOrders, to)
	return m.Err
}

func (m *MockMailer) SendOrderConfirmation(_ context.Context, to string, _ *db_models.Order, _ []db_models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmations = append(m.Confirmations, to)
	return m.Err
}

func (m *MockMailer) SendRetailerOutcome(_ context.Context, _ string, app *db_models.RetailerApplication, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, app.Status)
	return m.Err
}

func (m *MockMailer) SendRetailerTeamNotification(_ context.Context, _, _ string, _ *db_models.RetailerApplication, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetailerTeam++
	return m.Err
}

func (m *MockMailer) SendContactNotification(_ context.Context, to string, _ *db_models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContactNotices = append(m.ContactNotices, to)
	return m.Err
}

type MockVat struct {
	Valid   bool
	Err     error
	Calls   int
	Country string
	Number  string
}

func (m *MockVat) CheckVAT(_ context.Context, country, number string) (bool, error) {
	m.Calls++
	m.Country, m.Number = country, number
	return m.Valid, m.Err
}

type MockRetailerRepo struct {
	Apps      map[uuid.UUID]*db_models.RetailerApplication
	UpsertErr error
}

func (m *MockRetailerRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*db_models.RetailerApplication, error) {
	app, ok := m.Apps[userID]
	if !ok {
		return nil, nil
	}
	cp := *app
	return &cp, nil
}

func (m *MockRetailerRepo) Upsert(_ context.Context, app *db_models.RetailerApplication) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if m.Apps == nil {
		m.Apps = map[uuid.UUID]*db_models.RetailerApplication{}
	}
	cp := *app
	m.Apps[app.UserID] = &cp
	return nil
}

func (m *MockRetailerRepo) UpdateStatus(_ context.Context, userID uuid.UUID, status db_models.ApplicationStatus, notes *string, approvedAt *int64) error {
	app, ok := m.Apps[userID]
	if !ok {
		return nil
	}
	app.Status = status
	app.Notes = notes
	app.ApprovedAt = approvedAt
	return nil
}

type MockContactRepo struct {
	Inserted []*db_models.ContactMessage
	Err      error
}

func (m *MockContactRepo) Insert(_ context.Context, msg *db_models.ContactMessage) error {
	if m.Err != nil {
		return m.Err
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	m.Inserted = append(m.Inserted, msg)
	return nil
}
