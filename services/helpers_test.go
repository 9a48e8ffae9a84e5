package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ctxBG     = context.Background()
	testStart = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
)

// setupTestDB opens a private in-memory database with every table migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testStart}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fakeTimer struct {
	due     time.Time
	f       func()
	stopped bool
	fired   bool
}

// fakeTimers is an AfterFunc driven by a fakeClock. Timers only fire from
// advance, on the calling goroutine.
type fakeTimers struct {
	mu     sync.Mutex
	clock  *fakeClock
	timers []*fakeTimer
}

func newFakeTimers(clock *fakeClock) *fakeTimers {
	return &fakeTimers{clock: clock}
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{due: ft.clock.Now().Add(d), f: f}
	ft.timers = append(ft.timers, t)
	return &fakeTimerHandle{owner: ft, t: t}
}

type fakeTimerHandle struct {
	owner *fakeTimers
	t     *fakeTimer
}

func (h *fakeTimerHandle) Stop() bool {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	if h.t.stopped || h.t.fired {
		return false
	}
	h.t.stopped = true
	return true
}

// armed returns the due times of timers that are neither stopped nor fired.
func (ft *fakeTimers) armed() []time.Time {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	var out []time.Time
	for _, t := range ft.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.due)
		}
	}
	return out
}

// advance moves the clock forward by d, firing due timers in order. Timers
// armed by a callback fire too if they fall inside the window.
func (ft *fakeTimers) advance(d time.Duration) {
	target := ft.clock.Now().Add(d)
	for {
		ft.mu.Lock()
		var next *fakeTimer
		for _, t := range ft.timers {
			if t.stopped || t.fired || t.due.After(target) {
				continue
			}
			if next == nil || t.due.Before(next.due) {
				next = t
			}
		}
		if next != nil {
			next.fired = true
		}
		ft.mu.Unlock()

		if next == nil {
			break
		}
		if next.due.After(ft.clock.Now()) {
			ft.clock.set(next.due)
		}
		next.f()
	}
	ft.clock.set(target)
}

// recorder is a Broadcaster that keeps every event.
type recorder struct {
	mu        sync.Mutex
	started   []AuctionStartedEvent
	bids      []NewBidEvent
	ended     []AuctionEndedEvent
	cancelled []AuctionCancelledEvent
}

func (r *recorder) AuctionStarted(e AuctionStartedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, e)
}

func (r *recorder) NewBid(e NewBidEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids = append(r.bids, e)
}

func (r *recorder) AuctionEnded(e AuctionEndedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, e)
}

func (r *recorder) AuctionCancelled(e AuctionCancelledEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, e)
}

func (r *recorder) endedEvents() []AuctionEndedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AuctionEndedEvent(nil), r.ended...)
}

func (r *recorder) bidEvents() []NewBidEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]NewBidEvent(nil), r.bids...)
}

// testEnv is an AuctionService over a real store, a fake clock and fake timers.
type testEnv struct {
	db     *gorm.DB
	store  AuctionStore
	clock  *fakeClock
	timers *fakeTimers
	events *recorder
	svc    *AuctionService
	admin  Principal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	clock := newFakeClock()
	timers := newFakeTimers(clock)
	events := &recorder{}
	store := NewGormAuctionStore(db)

	svc := NewAuctionService(store, events, WithClock(clock), WithAfterFunc(timers.AfterFunc))
	t.Cleanup(svc.Shutdown)

	return &testEnv{
		db:     db,
		store:  store,
		clock:  clock,
		timers: timers,
		events: events,
		svc:    svc,
		admin:  Principal{UserID: uuid.NewString(), Role: models.RoleAdmin},
	}
}

func (e *testEnv) supplier(t *testing.T, name string) (*models.Supplier, Principal) {
	t.Helper()
	s := &models.Supplier{CompanyName: name, City: "Poznań", IsLocal: true}
	require.NoError(t, e.db.Create(s).Error)
	return s, Principal{UserID: uuid.NewString(), Role: models.RoleSupplier, SupplierID: s.ID}
}

func (e *testEnv) material(t *testing.T, name, unit string) *models.Material {
	t.Helper()
	cat := &models.MaterialCategory{Name: "Metals", Icon: "🔩"}
	require.NoError(t, e.db.Create(cat).Error)
	m := &models.Material{Name: name, Unit: unit, CategoryID: &cat.ID, Description: "hot rolled"}
	require.NoError(t, e.db.Create(m).Error)
	return m
}

func (e *testEnv) createAuction(t *testing.T, duration int, suppliers ...*models.Supplier) *models.Auction {
	t.Helper()
	ids := make([]string, 0, len(suppliers))
	for _, s := range suppliers {
		ids = append(ids, s.ID)
	}
	a, err := e.svc.Create(ctxBG, e.admin, AuctionSpec{
		Title:           "Steel rebar 12mm",
		Material:        models.CustomMaterial{Name: "Rebar", Unit: "t"},
		Quantity:        decimal.NewFromInt(1000),
		DurationMinutes: duration,
		SupplierIDs:     ids,
	})
	require.NoError(t, err)
	return a
}

func (e *testEnv) reload(t *testing.T, id string) *models.Auction {
	t.Helper()
	a, err := e.store.GetAuction(ctxBG, id)
	require.NoError(t, err)
	return a
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
