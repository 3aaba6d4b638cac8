package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storeadmin/pkg/metrics"
	"github.com/example/storeadmin/pkg/models"
)

const (
	minDeliveryDays = 3
	maxDeliveryDays = 7

	codNote = "Cash on Delivery - Payment due upon delivery"
)

// CreateOrderInput is what checkout hands to Create. Amounts are taken as
// given; the caller is responsible for validating them.
type CreateOrderInput struct {
	Items           []models.LineItem      `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentInfo     models.PaymentInfo     `json:"payment_info"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	Tax             decimal.Decimal        `json:"tax"`
	Shipping        decimal.Decimal        `json:"shipping"`
	Total           decimal.Decimal        `json:"total"`
}

// Manager owns the order cache. It is the only writer of the cache state;
// everything else reads snapshots.
type Manager struct {
	store    Store
	feed     ChangeFeed
	notifier Notifier
	auditor  Auditor
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	poll     time.Duration
	timeout  time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	mu       sync.RWMutex
	state    State
	inflight int

	refresh        chan string
	pendingMu      sync.Mutex
	pendingDeletes []string

	subMu sync.Mutex
	sub   Subscription
}

type Option func(*Manager)

func WithChangeFeed(feed ChangeFeed) Option {
	return func(m *Manager) { m.feed = feed }
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithAuditor(a Auditor) Option {
	return func(m *Manager) { m.auditor = a }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger.Named("orders") }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithPollInterval enables periodic full resynchronisation in Run. Zero
// disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.poll = d }
}

// WithFetchTimeout bounds each resynchronisation started by Run. Zero leaves
// timing to the store client. Direct FetchAll calls use the caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		logger:  zap.NewNop(),
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		refresh: make(chan string, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a deep copy of the cache state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Get looks an order up in the cache. It never fetches.
func (m *Manager) Get(id string) (models.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := indexOf(m.state.Orders, id); i >= 0 {
		return m.state.Orders[i].Clone(), true
	}
	return models.Order{}, false
}

// Focus selects a cached order for inspection. It reports whether the order
// was found; an unknown id clears the focus.
func (m *Manager) Focus(id string) bool {
	m.dispatch(Focus{ID: id})
	_, ok := m.Get(id)
	return ok
}

// FetchAll replaces the cache with the store's full order set. On failure
// the previous cache is kept and the error is recorded in the state. There
// is no retry.
func (m *Manager) FetchAll(ctx context.Context) error {
	m.beginLoad()
	defer m.endLoad()

	start := time.Now()
	recs, err := m.store.ListOrders(ctx)
	m.metrics.ObserveStore("list", start, err)
	if err != nil {
		err = fmt.Errorf("failed to fetch orders: %w", storeErr(err))
		m.fail(err)
		m.logger.Error("Failed to fetch orders", zap.Error(err))
		return err
	}

	orders := make([]models.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := FromRecord(rec)
		if err != nil {
			m.logger.Warn("Skipping malformed order record", zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}

	m.dispatch(SetOrders{Orders: orders})
	m.metrics.SetCached(len(orders))
	m.logger.Debug("Orders fetched", zap.Int("count", len(orders)))
	return nil
}

// Create writes a new order and adds it to the cache. The header and the
// line items are two separate writes: a failed header write aborts, a failed
// item write is logged and the order still counts as created.
func (m *Manager) Create(ctx context.Context, in CreateOrderInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, ErrNoItems
	}

	now := m.clock()
	eta := now.Add(m.deliveryOffset())

	status := models.StatusPending
	if in.PaymentInfo.Method == models.PaymentCashOnDelivery {
		status = models.StatusConfirmed
	}

	address := in.ShippingAddress
	if address.Country == "" {
		address.Country = DefaultCountry
	}

	payment := in.PaymentInfo
	if payment.SelectedAccount != nil {
		acc := *payment.SelectedAccount
		payment.SelectedAccount = &acc
	}

	// Line item ids are assigned by the store.
	items := make([]models.LineItem, len(in.Items))
	copy(items, in.Items)
	for i := range items {
		items[i].ID = ""
	}

	order := models.Order{
		ID:                uuid.NewString(),
		OrderNumber:       m.orderNumber(now),
		Items:             items,
		Subtotal:          in.Subtotal,
		Tax:               in.Tax,
		Shipping:          in.Shipping,
		Total:             in.Total,
		ShippingAddress:   address,
		PaymentInfo:       payment,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
		EstimatedDelivery: &eta,
		Notes:             paymentNote(payment),
	}

	rec := ToRecord(order)

	start := time.Now()
	err := m.store.InsertOrder(ctx, &rec)
	m.metrics.ObserveStore("insert_order", start, err)
	if err != nil {
		err = fmt.Errorf("failed to create order: %w", storeErr(err))
		m.fail(err)
		m.logger.Error("Failed to create order", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return models.Order{}, err
	}

	start = time.Now()
	err = m.store.InsertOrderItems(ctx, rec.Items)
	m.metrics.ObserveStore("insert_items", start, err)
	if err != nil {
		m.metrics.PartialWrite()
		m.logger.Error("Order created without line items",
			zap.String("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.Int("item_count", len(rec.Items)),
			zap.Error(fmt.Errorf("%w: %w", ErrPartialWrite, err)))
	}

	m.dispatch(Create{Order: order})
	m.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)))

	if m.notifier != nil {
		if err := m.notifier.SendOrderConfirmation(context.WithoutCancel(ctx), order.Clone()); err != nil {
			m.logger.Warn("Failed to send order confirmation", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	m.audit("create_order", order.ID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
		"total":        order.Total.String(),
	})

	return order.Clone(), nil
}

// UpdateStatus sets the status of one order. Only that cached order changes,
// and only after the store acknowledged the write. On failure the cache is
// left alone and the error kind is recorded.
func (m *Manager) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	at := m.bumpTime(id)
	err := m.update(ctx, "update_status", id, map[string]interface{}{
		"status":     string(status),
		"updated_at": FormatTime(at),
	})
	if err != nil {
		return err
	}
	m.dispatch(UpdateStatus{ID: id, Status: status, At: at})
	m.audit("update_status", id, map[string]interface{}{"status": string(status)})
	return nil
}

// UpdateTracking sets the tracking number of one order.
func (m *Manager) UpdateTracking(ctx context.Context, id, tracking string) error {
	at := m.bumpTime(id)
	err := m.update(ctx, "update_tracking", id, map[string]interface{}{
		"tracking_number": tracking,
		"updated_at":      FormatTime(at),
	})
	if err != nil {
		return err
	}
	m.dispatch(SetTracking{ID: id, TrackingNumber: tracking, At: at})
	m.audit("update_tracking", id, map[string]interface{}{"tracking_number": tracking})
	return nil
}

// ToggleStatus flips a cached order between a and b: an order in a moves to
// b, anything else moves to a. The new status is returned.
func (m *Manager) ToggleStatus(ctx context.Context, id string, a, b models.Status) (models.Status, error) {
	cur, ok := m.Get(id)
	if !ok {
		err := fmt.Errorf("failed to toggle status of %s: %w", id, ErrNotFound)
		m.fail(err)
		return "", err
	}
	next := a
	if cur.Status == a {
		next = b
	}

	at := m.bumpTime(id)
	err := m.update(ctx, "toggle_status", id, map[string]interface{}{
		"status":     string(next),
		"updated_at": FormatTime(at),
	})
	if err != nil {
		return "", err
	}
	m.dispatch(ToggleStatus{ID: id, From: cur.Status, To: next, At: at})
	m.audit("toggle_status", id, map[string]interface{}{"from": string(cur.Status), "to": string(next)})
	return next, nil
}

// History returns the newest limit audit entries of one order. It requires an
// auditor that can also read its trail back.
func (m *Manager) History(ctx context.Context, id string, limit int64) ([]AuditEntry, error) {
	trail, ok := m.auditor.(AuditTrail)
	if !ok {
		return nil, ErrAuditUnavailable
	}
	entries, err := trail.History(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit trail of %s: %w", id, err)
	}
	return entries, nil
}

// Refresh asks Run to resynchronise. Requests made while one is pending are
// coalesced.
func (m *Manager) Refresh(trigger string) {
	select {
	case m.refresh <- trigger:
	default:
	}
}

// Run subscribes to the change feed, loads the cache and then resynchronises
// on every change notification and poll tick until ctx is done. The
// subscription is closed before Run returns.
func (m *Manager) Run(ctx context.Context) error {
	if m.feed != nil {
		sub, err := m.feed.Subscribe(ctx, m.onChange)
		if err != nil {
			m.logger.Warn("Change feed unavailable, relying on polling", zap.Error(err))
		} else {
			m.subMu.Lock()
			m.sub = sub
			m.subMu.Unlock()
		}
	}
	defer m.Close()

	var tick <-chan time.Time
	if m.poll > 0 {
		ticker := time.NewTicker(m.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	m.resync(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Order sync stopped")
			return nil
		case trigger := <-m.refresh:
			m.applyPendingDeletes()
			m.metrics.Resync(trigger)
			m.resync(ctx)
		case <-tick:
			m.metrics.Resync("poll")
			m.resync(ctx)
		}
	}
}

// Close releases the change feed subscription. It is safe to call more than
// once.
func (m *Manager) Close() error {
	m.subMu.Lock()
	sub := m.sub
	m.sub = nil
	m.subMu.Unlock()
	if sub == nil {
		return nil
	}
	if err := sub.Close(); err != nil {
		return fmt.Errorf("failed to close change feed subscription: %w", err)
	}
	return nil
}

func (m *Manager) resync(ctx context.Context) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	_ = m.FetchAll(ctx)
}

// onChange runs on the feed's goroutine. It only queues work for Run.
func (m *Manager) onChange(evt models.ChangeEvent) {
	if evt.Op == models.ChangeDelete && evt.ID != "" {
		m.pendingMu.Lock()
		m.pendingDeletes = append(m.pendingDeletes, evt.ID)
		m.pendingMu.Unlock()
	}
	m.Refresh("change_feed")
}

func (m *Manager) applyPendingDeletes() {
	m.pendingMu.Lock()
	ids := m.pendingDeletes
	m.pendingDeletes = nil
	m.pendingMu.Unlock()
	for _, id := range ids {
		m.dispatch(Delete{ID: id})
	}
}

func (m *Manager) update(ctx context.Context, op, id string, fields map[string]interface{}) error {
	start := time.Now()
	err := m.store.UpdateOrder(ctx, id, fields)
	m.metrics.ObserveStore(op, start, err)
	if err != nil {
		err = fmt.Errorf("failed to %s for order %s: %w", op, id, storeErr(err))
		m.fail(err)
		m.logger.Error("Failed to update order", zap.String("op", op), zap.String("order_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (m *Manager) dispatch(cmd Command) {
	m.mu.Lock()
	m.state = Reduce(m.state, cmd)
	m.mu.Unlock()
}

func (m *Manager) fail(err error) {
	kind := KindOf(err)
	m.dispatch(SetError{Kind: &kind, Message: err.Error()})
}

func (m *Manager) beginLoad() {
	m.mu.Lock()
	m.inflight++
	m.state = Reduce(m.state, SetLoading{Loading: true})
	m.mu.Unlock()
}

func (m *Manager) endLoad() {
	m.mu.Lock()
	m.inflight--
	m.state = Reduce(m.state, SetLoading{Loading: m.inflight > 0})
	m.mu.Unlock()
}

func (m *Manager) audit(action, orderID string, data map[string]interface{}) {
	if m.auditor == nil {
		return
	}
	entry := AuditEntry{Action: action, OrderID: orderID, Data: data, At: m.clock()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.auditor.Record(ctx, entry); err != nil {
			m.logger.Warn("Failed to write audit log", zap.String("action", action), zap.Error(err))
		}
	}()
}

// clock returns the current time at the precision timestamps are stored with.
func (m *Manager) clock() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

// bumpTime returns a mutation time strictly after the cached updated-at of id.
func (m *Manager) bumpTime(id string) time.Time {
	at := m.clock()
	if cur, ok := m.Get(id); ok && !at.After(cur.UpdatedAt) {
		at = cur.UpdatedAt.Add(time.Microsecond)
	}
	return at
}

func (m *Manager) deliveryOffset() time.Duration {
	const day = 24 * time.Hour
	window := int64((maxDeliveryDays - minDeliveryDays) * day)
	m.rngMu.Lock()
	jitter := m.rng.Int63n(window + 1)
	m.rngMu.Unlock()
	return minDeliveryDays*day + time.Duration(jitter)
}

// orderNumber is time based with a random suffix. It is not checked against
// the store; a collision within the same millisecond is possible.
func (m *Manager) orderNumber(now time.Time) string {
	m.rngMu.Lock()
	suffix := m.rng.Intn(1000)
	m.rngMu.Unlock()
	return fmt.Sprintf("ORD-%d%03d", now.UnixMilli(), suffix)
}

func paymentNote(p models.PaymentInfo) string {
	var note string
	switch p.Method {
	case models.PaymentCashOnDelivery:
		return codNote
	case models.PaymentBankTransfer:
		note = "Bank Transfer - Awaiting payment confirmation"
	case models.PaymentMobileBanking:
		note = "Mobile Banking - Awaiting payment confirmation"
	default:
		note = "Awaiting payment confirmation"
	}
	if acc := p.SelectedAccount; acc != nil {
		note += fmt.Sprintf(" (%s %s)", acc.Provider, acc.AccountNumber)
	}
	return note
}

// storeErr tags err as a store failure unless it already carries a more
// specific kind.
func storeErr(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
