package usecases

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/application/payment/paymentprovider"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment"
	paymentvo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription"
	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/subscription/valueobjects"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

var errStoreDown = errors.New("store unavailable")

// memStore keeps value copies of aggregates so that callers only observe what was written.
type memStore struct {
	mu       sync.Mutex
	subs     map[uint]subscription.Subscription
	payments map[uint]payment.Payment
	history  []subscription.SubscriptionHistory
	nextID   uint

	failHistory      bool
	failPaymentCount bool
	// conflictsLeft makes the next N subscription updates fail with a version conflict.
	conflictsLeft int
}

func newMemStore() *memStore {
	return &memStore{
		subs:     map[uint]subscription.Subscription{},
		payments: map[uint]payment.Payment{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	subs     map[uint]subscription.Subscription
	payments map[uint]payment.Payment
	history  []subscription.SubscriptionHistory
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		subs:     make(map[uint]subscription.Subscription, len(s.subs)),
		payments: make(map[uint]payment.Payment, len(s.payments)),
		history:  append([]subscription.SubscriptionHistory(nil), s.history...),
	}
	for k, v := range s.subs {
		snap.subs[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = snap.subs
	s.payments = snap.payments
	s.history = snap.history
}

// fakeTx rolls the store back when fn fails, including nested calls.
type fakeTx struct {
	store *memStore
	runs  int
}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.runs++
	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeSubscriptionRepo struct {
	store *memStore
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := sub.SetID(r.store.id()); err != nil {
		return err
	}
	r.store.subs[sub.ID()] = *sub
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.subs[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *fakeSubscriptionRepo) GetByIDForUpdate(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSubscriptionRepo) GetLiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, sub := range r.store.subs {
		if sub.UserID() == userID && sub.Status().IsLive() {
			found := sub
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.conflictsLeft > 0 {
		r.store.conflictsLeft--
		return subscription.ErrVersionConflict
	}
	stored, ok := r.store.subs[sub.ID()]
	if !ok || stored.Version() != sub.Version()-1 {
		return subscription.ErrVersionConflict
	}
	r.store.subs[sub.ID()] = *sub
	return nil
}

func (r *fakeSubscriptionRepo) ListLapsedIDs(ctx context.Context, before time.Time, limit int) ([]uint, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var ids []uint
	for id, sub := range r.store.subs {
		paidThrough := sub.PaidThrough()
		if sub.Status() == vo.StatusActive && paidThrough != nil && paidThrough.Before(before) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type fakePaymentRepo struct {
	store *memStore
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.payments {
		if existing.Source() == p.Source() && existing.ExternalID() == p.ExternalID() {
			return payment.ErrDuplicateExternalID
		}
	}
	if err := p.SetID(r.store.id()); err != nil {
		return err
	}
	r.store.payments[p.ID()] = *p
	return nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.payments[p.ID()]
	if !ok || stored.Version() >= p.Version() {
		return payment.ErrVersionConflict
	}
	r.store.payments[p.ID()] = *p
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePaymentRepo) GetByExternalID(ctx context.Context, source paymentvo.Source, externalID string) (*payment.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.payments {
		if p.Source() == source && p.ExternalID() == externalID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) GetLatestPlanPayment(ctx context.Context, subscriptionID uint) (*payment.Payment, error) {
	all := r.bySubscription(subscriptionID)
	for _, p := range all {
		if p.Source() == paymentvo.SourcePlan {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) ListBySubscriptionID(ctx context.Context, subscriptionID uint, limit, offset int) ([]*payment.Payment, int64, error) {
	all := r.bySubscription(subscriptionID)
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *fakePaymentRepo) CountByPlanAndStatusSince(ctx context.Context, subscriptionID uint, planExternalID string, status paymentvo.PaymentStatus, since time.Time) (int64, error) {
	if r.store.failPaymentCount {
		return 0, errStoreDown
	}
	var n int64
	for _, p := range r.bySubscription(subscriptionID) {
		if p.PlanExternalID() == planExternalID && p.Status() == status && !p.CreatedAt().Before(since) {
			n++
		}
	}
	return n, nil
}

// bySubscription returns the subscription's payments newest first.
func (r *fakePaymentRepo) bySubscription(subscriptionID uint) []*payment.Payment {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*payment.Payment
	for _, p := range r.store.payments {
		if p.SubscriptionID() != nil && *p.SubscriptionID() == subscriptionID {
			found := p
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() > out[j].ID() })
	return out
}

type fakeHistoryRepo struct {
	store *memStore
}

func (r *fakeHistoryRepo) Create(ctx context.Context, h *subscription.SubscriptionHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failHistory {
		return errStoreDown
	}
	if err := h.SetID(r.store.id()); err != nil {
		return err
	}
	r.store.history = append(r.store.history, *h)
	return nil
}

func (r *fakeHistoryRepo) ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*subscription.SubscriptionHistory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*subscription.SubscriptionHistory
	for _, h := range r.store.history {
		if h.SubscriptionID() == subscriptionID {
			found := h
			out = append(out, &found)
		}
	}
	return out, nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeNotifier struct {
	notices chan SubscriptionSuspendedNotice
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notices: make(chan SubscriptionSuspendedNotice, 4)}
}

func (n *fakeNotifier) NotifySubscriptionSuspended(ctx context.Context, notice SubscriptionSuspendedNotice) error {
	n.notices <- notice
	return nil
}

type fakeDeduplicator struct {
	mu       sync.Mutex
	seen     map[string]bool
	released []string
	err      error
}

func newFakeDeduplicator() *fakeDeduplicator {
	return &fakeDeduplicator{seen: map[string]bool{}}
}

func (d *fakeDeduplicator) TryAcquire(ctx context.Context, event, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	key := event + ":" + id
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *fakeDeduplicator) Release(ctx context.Context, event, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := event + ":" + id
	delete(d.seen, key)
	d.released = append(d.released, key)
	return nil
}

// fixture wires every use case of the package against one in-memory store.
type fixture struct {
	store    *memStore
	tx       *fakeTx
	subs     *fakeSubscriptionRepo
	payments *fakePaymentRepo
	history  *fakeHistoryRepo
	clock    *fakeClock
	provider *paymentprovider.MockProvider
	notifier *fakeNotifier

	webhooks *ProcessWebhookUseCase
	start    *StartSubscriptionUseCase
	resume   *ResumeSubscriptionUseCase
	cancel   *CancelSubscriptionUseCase
	get      *GetSubscriptionUseCase
	expire   *ExpireLapsedSubscriptionsUseCase
}

var fixtureStart = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func newFixture(providerUp bool) *fixture {
	store := newMemStore()
	log := logger.NewNopLogger()
	f := &fixture{
		store:    store,
		tx:       &fakeTx{store: store},
		subs:     &fakeSubscriptionRepo{store: store},
		payments: &fakePaymentRepo{store: store},
		history:  &fakeHistoryRepo{store: store},
		clock:    &fakeClock{now: fixtureStart},
		provider: paymentprovider.NewMockProvider(providerUp),
		notifier: newFakeNotifier(),
	}

	recorder := NewHistoryRecorder(f.history, f.tx, log)
	monitor := NewFailureMonitor(f.payments, f.subs, recorder, log)
	monitor.SetAdminNotifier(f.notifier)

	f.webhooks = NewProcessWebhookUseCase(f.tx, f.subs, f.payments, recorder, monitor, log)
	f.webhooks.SetClock(f.clock.Now)
	f.start = NewStartSubscriptionUseCase(f.tx, f.subs, f.payments, f.provider, recorder, log)
	f.start.SetClock(f.clock.Now)
	f.resume = NewResumeSubscriptionUseCase(f.tx, f.subs, f.payments, f.provider, recorder, log)
	f.resume.SetClock(f.clock.Now)
	f.cancel = NewCancelSubscriptionUseCase(f.tx, f.subs, recorder, log)
	f.cancel.SetClock(f.clock.Now)
	f.get = NewGetSubscriptionUseCase(f.subs, f.payments, f.history, log)
	f.expire = NewExpireLapsedSubscriptionsUseCase(f.tx, f.subs, recorder, DefaultExpiryGrace, log)
	f.expire.SetClock(f.clock.Now)
	return f
}

func (f *fixture) subscription(id uint) *subscription.Subscription {
	sub, _ := f.subs.GetByID(context.Background(), id)
	return sub
}

func (f *fixture) paymentsOf(id uint) []*payment.Payment {
	return f.payments.bySubscription(id)
}

func (f *fixture) historyOf(id uint) []*subscription.SubscriptionHistory {
	entries, _ := f.history.ListBySubscriptionID(context.Background(), id)
	return entries
}

// seedSubscription stores a subscription in the given status with a plan payment keyed by planID.
func (f *fixture) seedSubscription(userID uint, status vo.SubscriptionStatus, planID string, expiresAt *time.Time) *subscription.Subscription {
	ctx := context.Background()
	now := f.clock.Now()

	var trialEndsAt, periodStart, periodEnd *time.Time
	autoRenew := true
	switch status {
	case vo.StatusTrial:
		end := subscription.TrialEnd(now)
		trialEndsAt = &end
	case vo.StatusActive:
		end := subscription.PeriodEnd(now, vo.PlanMonthly)
		periodStart, periodEnd = &now, &end
	case vo.StatusCancelled:
		autoRenew = false
	}

	sub, err := subscription.ReconstructSubscription(
		f.store.id(), userID, vo.PlanMonthly, status, now,
		trialEndsAt, expiresAt, periodStart, periodEnd,
		nil, nil, autoRenew, 1, now, now,
	)
	if err != nil {
		panic(err)
	}
	f.store.subs[sub.ID()] = *sub

	if planID != "" {
		amount, _ := paymentvo.NewMoney(9900, "USD")
		p, err := payment.NewPlanPayment(userID, sub.ID(), planID, amount, "https://pay.example/"+planID, now)
		if err != nil {
			panic(err)
		}
		if status == vo.StatusActive {
			_ = p.MarkAsPaid(now)
		}
		if err := f.payments.Create(ctx, p); err != nil {
			panic(err)
		}
	}
	return sub
}
