package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memCustomers struct {
	items map[uuid.UUID]models.Customer
}

func newMemCustomers(customers ...models.Customer) *memCustomers {
	m := &memCustomers{items: make(map[uuid.UUID]models.Customer)}
	for _, c := range customers {
		m.items[c.ID] = c
	}
	return m
}

func (m *memCustomers) Create(_ context.Context, customer *models.Customer) error {
	customer.ID = uuid.New()
	m.items[customer.ID] = *customer
	return nil
}

func (m *memCustomers) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Customer, error) {
	c, ok := m.items[id]
	if !ok || c.UserID != userID {
		return nil, commerce.NewNotFoundError("customer", id)
	}
	return &c, nil
}

func (m *memCustomers) List(_ context.Context, userID uuid.UUID, _ string) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range m.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCustomers) Update(_ context.Context, customer *models.Customer) error {
	if _, ok := m.items[customer.ID]; !ok {
		return commerce.NewNotFoundError("customer", customer.ID)
	}
	m.items[customer.ID] = *customer
	return nil
}

func (m *memCustomers) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

type memProducts struct {
	items map[uuid.UUID]models.Product
}

func newMemProducts(products ...models.Product) *memProducts {
	m := &memProducts{items: make(map[uuid.UUID]models.Product)}
	for _, p := range products {
		m.items[p.ID] = p
	}
	return m
}

func (m *memProducts) Create(_ context.Context, product *models.Product) error {
	product.ID = uuid.New()
	m.items[product.ID] = *product
	return nil
}

func (m *memProducts) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Product, error) {
	p, ok := m.items[id]
	if !ok || p.UserID != userID {
		return nil, commerce.NewNotFoundError("product", id)
	}
	return &p, nil
}

func (m *memProducts) GetByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.items[id]; ok && p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) List(_ context.Context, userID uuid.UUID, _ string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Update(_ context.Context, product *models.Product) error {
	m.items[product.ID] = *product
	return nil
}

func (m *memProducts) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

// memDocuments imita el control de versiones del repositorio de PostgreSQL
type memDocuments struct {
	items      map[uuid.UUID]models.Document
	created    int
	sweepCalls int
	stale      map[uuid.UUID]bool
}

func newMemDocuments() *memDocuments {
	return &memDocuments{items: make(map[uuid.UUID]models.Document)}
}

func (m *memDocuments) put(doc models.Document) models.Document {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	m.items[doc.ID] = doc.Clone()
	return doc
}

func (m *memDocuments) Create(_ context.Context, doc *models.Document) error {
	m.created++
	doc.ID = uuid.New()
	doc.Version = 1
	doc.DocumentNumber = database.FormatDocumentNumber(doc.Kind, int64(m.created))
	m.items[doc.ID] = doc.Clone()
	return nil
}

func (m *memDocuments) GetByID(_ context.Context, userID uuid.UUID, kind models.DocumentKind, id uuid.UUID) (*models.Document, error) {
	doc, ok := m.items[id]
	if !ok || doc.UserID != userID || doc.Kind != kind {
		return nil, commerce.NewNotFoundError(string(kind), id)
	}
	out := doc.Clone()
	return &out, nil
}

func (m *memDocuments) List(_ context.Context, filter database.DocumentFilter) ([]models.Document, int, error) {
	var out []models.Document
	for _, doc := range m.items {
		if doc.UserID != filter.UserID || doc.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		out = append(out, doc.Clone())
	}
	return out, len(out), nil
}

func (m *memDocuments) ListSweepCandidates(_ context.Context, now time.Time, limit int) ([]models.Document, error) {
	m.sweepCalls++
	var out []models.Document
	for _, doc := range m.items {
		if len(out) == limit {
			break
		}
		if commerce.EffectiveStatus(doc, now) != doc.Status {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (m *memDocuments) write(doc *models.Document, expectedVersion int) error {
	current, ok := m.items[doc.ID]
	if !ok {
		return commerce.NewNotFoundError(string(doc.Kind), doc.ID)
	}
	if current.Version != expectedVersion || m.stale[doc.ID] {
		return commerce.NewConflictError(string(doc.Kind), doc.ID, "stale version")
	}
	doc.Version = expectedVersion + 1
	m.items[doc.ID] = doc.Clone()
	return nil
}

func (m *memDocuments) Update(_ context.Context, doc *models.Document, expectedVersion int) error {
	return m.write(doc, expectedVersion)
}

func (m *memDocuments) UpdateStatus(_ context.Context, doc *models.Document, expectedVersion int) error {
	return m.write(doc, expectedVersion)
}

func (m *memDocuments) Delete(_ context.Context, _ uuid.UUID, kind models.DocumentKind, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return commerce.NewNotFoundError(string(kind), id)
	}
	delete(m.items, id)
	return nil
}

type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", database.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCache) SetIfAbsent(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = value
	return true, nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

type recordingNotifier struct {
	sent []*models.Document
	err  error
}

func (n *recordingNotifier) SendDocument(_ context.Context, doc *models.Document, _ *models.Customer, _ models.Totals) error {
	n.sent = append(n.sent, doc)
	return n.err
}

type memSubscriptions struct {
	plans    map[uuid.UUID]models.Plan
	subs     map[uuid.UUID]models.Subscription
	requests map[uuid.UUID]models.SubscriptionRequest
	decided  int
}

func newMemSubscriptions(plans ...models.Plan) *memSubscriptions {
	m := &memSubscriptions{
		plans:    make(map[uuid.UUID]models.Plan),
		subs:     make(map[uuid.UUID]models.Subscription),
		requests: make(map[uuid.UUID]models.SubscriptionRequest),
	}
	for _, p := range plans {
		m.plans[p.ID] = p
	}
	return m
}

func (m *memSubscriptions) ListPlans(context.Context) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range m.plans {
		out = append(out, p)
	}
	return out, nil
}

func (m *memSubscriptions) GetPlan(_ context.Context, id uuid.UUID) (*models.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, commerce.NewNotFoundError("plan", id)
	}
	return &p, nil
}

func (m *memSubscriptions) GetByUser(_ context.Context, userID uuid.UUID) (*models.Subscription, error) {
	s, ok := m.subs[userID]
	if !ok {
		return nil, commerce.NewNotFoundError("subscription", userID)
	}
	return &s, nil
}

func (m *memSubscriptions) CreateRequest(_ context.Context, req *models.SubscriptionRequest) error {
	req.ID = uuid.New()
	req.Status = models.SubscriptionRequestPending
	m.requests[req.ID] = *req
	return nil
}

func (m *memSubscriptions) GetRequest(_ context.Context, id uuid.UUID) (*models.SubscriptionRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, commerce.NewNotFoundError("subscription request", id)
	}
	return &r, nil
}

func (m *memSubscriptions) ListRequests(_ context.Context, status models.SubscriptionRequestStatus) ([]models.SubscriptionRequest, error) {
	var out []models.SubscriptionRequest
	for _, r := range m.requests {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSubscriptions) Decide(_ context.Context, req *models.SubscriptionRequest, sub *models.Subscription) error {
	m.decided++
	m.requests[req.ID] = *req
	if sub != nil {
		m.subs[sub.UserID] = *sub
	}
	return nil
}

type memUsers struct {
	users map[uuid.UUID]models.User
	keys  map[string]models.APIKey
}

func newMemUsers() *memUsers {
	return &memUsers{
		users: make(map[uuid.UUID]models.User),
		keys:  make(map[string]models.APIKey),
	}
}

func (m *memUsers) CreateWithAPIKey(_ context.Context, user *models.User, key *models.APIKey) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return commerce.NewConflictError("user", user.Email, "email already registered")
		}
	}
	m.users[user.ID] = *user
	m.keys[key.KeyHash] = *key
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, commerce.NewNotFoundError("user", id)
	}
	return &u, nil
}

// memAPIKeys resuelve las claves registradas en memUsers
type memAPIKeys struct {
	users    *memUsers
	lastUsed []uuid.UUID
}

func (m *memAPIKeys) Create(_ context.Context, userID uuid.UUID, name string) (*models.APIKey, string, error) {
	key, plain, err := database.NewAPIKey(userID, name)
	if err != nil {
		return nil, "", err
	}
	m.users.keys[key.KeyHash] = *key
	return key, plain, nil
}

func (m *memAPIKeys) ResolvePrincipal(_ context.Context, keyHash string) (*models.Principal, uuid.UUID, error) {
	key, ok := m.users.keys[keyHash]
	if !ok || !key.IsActive {
		return nil, uuid.Nil, commerce.NewNotFoundError("api key", "")
	}
	user := m.users.users[key.UserID]
	return &models.Principal{UserID: user.ID, IsAdmin: user.IsAdmin}, key.ID, nil
}

func (m *memAPIKeys) ListByUser(_ context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	var out []models.APIKey
	for _, k := range m.users.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memAPIKeys) UpdateLastUsed(_ context.Context, id uuid.UUID) error {
	m.lastUsed = append(m.lastUsed, id)
	return nil
}

func (m *memAPIKeys) Deactivate(_ context.Context, userID, id uuid.UUID) error {
	for hash, k := range m.users.keys {
		if k.ID == id && k.UserID == userID {
			k.IsActive = false
			m.users.keys[hash] = k
			return nil
		}
	}
	return commerce.NewNotFoundError("api key", id)
}

var errBoom = errors.New("boom")
