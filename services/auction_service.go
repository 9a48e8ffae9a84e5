package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"auction-backend/models"
	"auction-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Soft-close: a bid placed with SoftCloseWindow or less remaining pushes the
// end time back by SoftCloseExtension. Every such bid extends again.
const (
	SoftCloseWindow    = 60 * time.Second
	SoftCloseExtension = 30 * time.Second
)

// Auction parameter limits.
const (
	MinDurationMinutes     = 1
	MaxDurationMinutes     = 1440
	DefaultDurationMinutes = 10
	MinTitleLength         = 3
	MaxTitleLength         = 300
	MaxDescriptionLength   = 2000
	DefaultPageLimit       = 20
	MaxPageLimit           = 100
)

// Decimal places kept by the amount and quantity columns.
const (
	AmountPlaces   = 2
	QuantityPlaces = 3
)

var minBidAmount = decimal.New(1, -AmountPlaces)

// closeTimeout bounds a timer-initiated close, which has no request context.
const closeTimeout = 10 * time.Second

// AuctionSpec is the payload of Create.
type AuctionSpec struct {
	Title           string
	Description     string
	Material        models.MaterialRef
	Quantity        decimal.Decimal
	Unit            string
	DurationMinutes int
	SupplierIDs     []string
}

// BidResult is returned by PlaceBid.
type BidResult struct {
	Bid          models.Bid
	LowestBid    decimal.Decimal
	BidsCount    int64
	EndTime      time.Time
	TimeExtended bool
}

// AuctionPage is one page of List.
type AuctionPage struct {
	Data       []*AuctionView `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination describes an AuctionPage.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// AuctionService is the only writer of auction state. Every mutation of one
// auction, including timer expiry, runs under that auction's lock.
type AuctionService struct {
	store     AuctionStore
	events    Broadcaster
	clock     Clock
	locks     *KeyedMutex
	scheduler *Scheduler
	log       *logrus.Entry

	afterFunc AfterFunc
}

// Option configures an AuctionService.
type Option func(*AuctionService)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *AuctionService) { s.clock = c }
}

// WithAfterFunc replaces time.AfterFunc for the close scheduler.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *AuctionService) { s.afterFunc = f }
}

// WithLogger replaces the service logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *AuctionService) { s.log = l }
}

// NewAuctionService wires the engine. events may be nil.
func NewAuctionService(store AuctionStore, events Broadcaster, opts ...Option) *AuctionService {
	if events == nil {
		events = NopBroadcaster{}
	}
	s := &AuctionService{
		store:  store,
		events: events,
		clock:  SystemClock(),
		locks:  NewKeyedMutex(),
		log:    utils.Logger("auction_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scheduler = NewScheduler(s.onTimerFired, s.afterFunc)
	return s
}

// Scheduler exposes the close scheduler.
func (s *AuctionService) Scheduler() *Scheduler {
	return s.scheduler
}

// Shutdown disarms all timers. Auctions stay active in the store and are
// picked up by ReconcileOnStartup on the next boot.
func (s *AuctionService) Shutdown() {
	s.scheduler.Stop()
}

// Create persists a pending auction and its invitations.
func (s *AuctionService) Create(ctx context.Context, p Principal, spec AuctionSpec) (*models.Auction, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("create auction: %w", ErrForbidden)
	}

	title := strings.TrimSpace(spec.Title)
	if n := len([]rune(title)); n < MinTitleLength || n > MaxTitleLength {
		return nil, fmt.Errorf("%w: title must be %d-%d characters", ErrValidation, MinTitleLength, MaxTitleLength)
	}
	if len([]rune(spec.Description)) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
	}
	if !spec.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
	}
	if !spec.Quantity.Equal(spec.Quantity.Truncate(QuantityPlaces)) {
		return nil, fmt.Errorf("%w: quantity allows at most %d decimal places", ErrValidation, QuantityPlaces)
	}

	duration := spec.DurationMinutes
	if duration == 0 {
		duration = DefaultDurationMinutes
	}
	if duration < MinDurationMinutes || duration > MaxDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes", ErrValidation, MinDurationMinutes, MaxDurationMinutes)
	}

	auction := &models.Auction{
		ID:              uuid.NewString(),
		Title:           title,
		Description:     spec.Description,
		Quantity:        spec.Quantity,
		Unit:            strings.TrimSpace(spec.Unit),
		DurationMinutes: duration,
		Status:          models.AuctionStatusPending,
		CreatedBy:       p.UserID,
		CreatedAt:       s.clock.Now(),
	}

	var catalog *models.Material
	switch m := spec.Material.(type) {
	case models.CatalogMaterial:
		if err := validateID(m.ID, "material"); err != nil {
			return nil, err
		}
		material, err := s.store.GetMaterial(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("create auction: %w", err)
		}
		auction.SetMaterial(models.CatalogMaterial{ID: material.ID})
		catalog = material
		if auction.Unit == "" {
			auction.Unit = material.Unit
		}
	case models.CustomMaterial:
		name, unit := strings.TrimSpace(m.Name), strings.TrimSpace(m.Unit)
		if name == "" || unit == "" {
			return nil, fmt.Errorf("%w: custom material needs a name and a unit", ErrValidation)
		}
		auction.SetMaterial(models.CustomMaterial{Name: name, Unit: unit})
		if auction.Unit == "" {
			auction.Unit = unit
		}
	default:
		return nil, fmt.Errorf("%w: material is required", ErrValidation)
	}

	supplierIDs, err := s.checkSuppliers(ctx, spec.SupplierIDs)
	if err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}

	if err := s.store.CreateAuction(ctx, auction, supplierIDs); err != nil {
		return nil, err
	}
	auction.Material = catalog

	s.log.WithFields(logrus.Fields{
		"auction_id": auction.ID,
		"invited":    len(supplierIDs),
		"duration":   duration,
	}).Info("auction created")
	return auction, nil
}

// Invite adds invitations to a pending auction and returns how many were new.
func (s *AuctionService) Invite(ctx context.Context, p Principal, auctionID string, supplierIDs []string) (int64, error) {
	if !p.IsAdmin() {
		return 0, fmt.Errorf("invite: %w", ErrForbidden)
	}
	if err := validateID(auctionID, "auction"); err != nil {
		return 0, err
	}
	if len(supplierIDs) == 0 {
		return 0, fmt.Errorf("%w: supplier_ids must not be empty", ErrValidation)
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return 0, err
	}
	if auction.Status != models.AuctionStatusPending {
		return 0, fmt.Errorf("invite to %s auction: %w", auction.Status, ErrInvalidState)
	}

	ids, err := s.checkSuppliers(ctx, supplierIDs)
	if err != nil {
		return 0, fmt.Errorf("invite: %w", err)
	}

	added, err := s.store.AddInvitations(ctx, auctionID, ids, s.clock.Now())
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"auction_id": auctionID, "added": added}).Info("suppliers invited")
	return added, nil
}

// Uninvite removes a supplier's invitation from a pending auction.
func (s *AuctionService) Uninvite(ctx context.Context, p Principal, auctionID, supplierID string) error {
	if !p.IsAdmin() {
		return fmt.Errorf("uninvite: %w", ErrForbidden)
	}
	if err := validateID(auctionID, "auction"); err != nil {
		return err
	}
	if err := validateID(supplierID, "supplier"); err != nil {
		return err
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status != models.AuctionStatusPending {
		return fmt.Errorf("uninvite from %s auction: %w", auction.Status, ErrInvalidState)
	}

	removed, err := s.store.RemoveInvitation(ctx, auctionID, supplierID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("invitation of supplier %s: %w", supplierID, ErrNotFound)
	}
	return nil
}

// Start opens a pending auction for bidding and arms its close timer.
func (s *AuctionService) Start(ctx context.Context, p Principal, auctionID string) (*models.Auction, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("start: %w", ErrForbidden)
	}
	if err := validateID(auctionID, "auction"); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != models.AuctionStatusPending {
		return nil, fmt.Errorf("start %s auction: %w", auction.Status, ErrInvalidState)
	}

	invited, err := s.store.CountInvitations(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if invited == 0 {
		return nil, fmt.Errorf("%w: invite at least one supplier before starting", ErrPreconditionFailed)
	}

	now := s.clock.Now()
	duration := time.Duration(auction.DurationMinutes) * time.Minute
	end := now.Add(duration)

	ok, err := s.store.TransitionStatus(ctx, auctionID,
		[]models.AuctionStatus{models.AuctionStatusPending},
		StatusChange{To: models.AuctionStatusActive, StartTime: &now, EndTime: &end})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("start auction %s: %w", auctionID, ErrInvalidState)
	}

	auction.Status = models.AuctionStatusActive
	auction.StartTime = &now
	auction.EndTime = &end

	s.scheduler.Schedule(auctionID, duration)
	s.events.AuctionStarted(AuctionStartedEvent{
		AuctionID:       auctionID,
		Title:           auction.Title,
		EndTime:         end,
		DurationMinutes: auction.DurationMinutes,
	})

	s.log.WithFields(logrus.Fields{"auction_id": auctionID, "end_time": end}).Info("auction started")
	return auction, nil
}

// PlaceBid records a supplier's offer on an active auction, applying the
// soft-close extension when the bid lands in the closing window.
func (s *AuctionService) PlaceBid(ctx context.Context, p Principal, auctionID string, amount decimal.Decimal) (*BidResult, error) {
	if !p.IsSupplier() {
		return nil, fmt.Errorf("bid: only suppliers can bid: %w", ErrForbidden)
	}
	if err := validateID(auctionID, "auction"); err != nil {
		return nil, err
	}
	if amount.LessThan(minBidAmount) {
		return nil, fmt.Errorf("%w: amount must be at least %s", ErrValidation, minBidAmount)
	}
	if !amount.Equal(amount.Truncate(AmountPlaces)) {
		return nil, fmt.Errorf("%w: amount allows at most %d decimal places", ErrValidation, AmountPlaces)
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	now := s.clock.Now()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.EndTime != nil && !now.Before(*auction.EndTime) {
		return nil, fmt.Errorf("bid on auction %s: %w", auctionID, ErrAuctionExpired)
	}
	if auction.Status != models.AuctionStatusActive || auction.EndTime == nil {
		return nil, fmt.Errorf("bid on %s auction: %w", auction.Status, ErrNotActive)
	}

	invited, err := s.store.HasInvitation(ctx, auctionID, p.SupplierID)
	if err != nil {
		return nil, err
	}
	if !invited {
		return nil, fmt.Errorf("bid on auction %s: %w", auctionID, ErrNotInvited)
	}

	end := *auction.EndTime
	extended := end.Sub(now) <= SoftCloseWindow
	var newEnd *time.Time
	if extended {
		e := end.Add(SoftCloseExtension)
		newEnd = &e
		end = e
	}

	bid := models.Bid{
		ID:         uuid.NewString(),
		AuctionID:  auctionID,
		SupplierID: p.SupplierID,
		Amount:     amount,
		CreatedAt:  now,
	}
	if err := s.store.RecordBid(ctx, &bid, newEnd); err != nil {
		return nil, err
	}

	if extended {
		s.scheduler.Schedule(auctionID, end.Sub(now))
		s.log.WithFields(logrus.Fields{"auction_id": auctionID, "end_time": end}).
			Infof("auction extended by %s", SoftCloseExtension)
	}

	stats, err := s.store.BidStats(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	event := NewBidEvent{
		AuctionID: auctionID,
		LowestBid: stats.Lowest.Decimal,
		BidsCount: stats.Count,
		Timestamp: now,
	}
	if extended {
		event.TimeExtended = true
		event.NewEndTime = &end
		event.ExtensionSeconds = int(SoftCloseExtension / time.Second)
	}
	s.events.NewBid(event)

	return &BidResult{
		Bid:          bid,
		LowestBid:    stats.Lowest.Decimal,
		BidsCount:    stats.Count,
		EndTime:      end,
		TimeExtended: extended,
	}, nil
}

// Close completes an active auction whose time has run out, awarding it to the
// lowest bid. It is a no-op for any other status, so duplicate or late timer
// fires have no effect. If the end time moved past now (an extension won the
// race with the timer) the timer is re-armed instead.
func (s *AuctionService) Close(ctx context.Context, auctionID string) error {
	unlock := s.locks.Lock(auctionID)
	defer unlock()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status != models.AuctionStatusActive {
		return nil
	}

	now := s.clock.Now()
	if auction.EndTime != nil && now.Before(*auction.EndTime) {
		s.scheduler.Schedule(auctionID, auction.EndTime.Sub(now))
		return nil
	}

	winning, err := s.store.LowestBid(ctx, auctionID)
	if err != nil {
		return err
	}

	change := StatusChange{To: models.AuctionStatusCompleted, EndTime: &now, SetWinner: true}
	var winner *WinnerSummary
	if winning != nil {
		supplierID := winning.SupplierID
		change.WinnerID = &supplierID
		change.WinningBid = decimal.NewNullDecimal(winning.Amount)

		winner = &WinnerSummary{SupplierID: supplierID, Amount: winning.Amount}
		if winning.Supplier != nil {
			winner.CompanyName = winning.Supplier.CompanyName
		}
	}

	ok, err := s.store.TransitionStatus(ctx, auctionID,
		[]models.AuctionStatus{models.AuctionStatusActive}, change)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	s.scheduler.Cancel(auctionID)
	s.events.AuctionEnded(AuctionEndedEvent{AuctionID: auctionID, Winner: winner, EndTime: now})

	fields := logrus.Fields{"auction_id": auctionID}
	if winner != nil {
		fields["winner_id"] = winner.SupplierID
		fields["winning_bid"] = winner.Amount.String()
	}
	s.log.WithFields(fields).Info("auction completed")
	return nil
}

// Cancel stops a pending or active auction.
func (s *AuctionService) Cancel(ctx context.Context, p Principal, auctionID string) error {
	if !p.IsAdmin() {
		return fmt.Errorf("cancel: %w", ErrForbidden)
	}
	if err := validateID(auctionID, "auction"); err != nil {
		return err
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status.IsTerminal() {
		return fmt.Errorf("cancel %s auction: %w", auction.Status, ErrAlreadyTerminal)
	}

	ok, err := s.store.TransitionStatus(ctx, auctionID,
		[]models.AuctionStatus{models.AuctionStatusPending, models.AuctionStatusActive},
		StatusChange{To: models.AuctionStatusCancelled})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cancel auction %s: %w", auctionID, ErrAlreadyTerminal)
	}

	s.scheduler.Cancel(auctionID)
	s.events.AuctionCancelled(AuctionCancelledEvent{AuctionID: auctionID})

	s.log.WithField("auction_id", auctionID).Info("auction cancelled")
	return nil
}

// PublishResults reveals a completed auction's outcome to its suppliers.
func (s *AuctionService) PublishResults(ctx context.Context, p Principal, auctionID string) error {
	if !p.IsAdmin() {
		return fmt.Errorf("publish results: %w", ErrForbidden)
	}
	if err := validateID(auctionID, "auction"); err != nil {
		return err
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status != models.AuctionStatusCompleted {
		return fmt.Errorf("publish results of %s auction: %w", auction.Status, ErrInvalidState)
	}
	if auction.ResultsPublished {
		return fmt.Errorf("auction %s: %w", auctionID, ErrAlreadyPublished)
	}

	ok, err := s.store.MarkResultsPublished(ctx, auctionID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("auction %s: %w", auctionID, ErrAlreadyPublished)
	}
	return nil
}

// Delete removes a completed or cancelled auction with its bids and invitations.
func (s *AuctionService) Delete(ctx context.Context, p Principal, auctionID string) error {
	if !p.IsAdmin() {
		return fmt.Errorf("delete: %w", ErrForbidden)
	}
	if err := validateID(auctionID, "auction"); err != nil {
		return err
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	switch auction.Status {
	case models.AuctionStatusActive:
		return fmt.Errorf("auction %s: %w", auctionID, ErrActiveDeletion)
	case models.AuctionStatusPending:
		return fmt.Errorf("delete pending auction %s, cancel it first: %w", auctionID, ErrInvalidState)
	}

	ok, err := s.store.DeleteAuction(ctx, auctionID,
		[]models.AuctionStatus{models.AuctionStatusCompleted, models.AuctionStatusCancelled})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("delete auction %s: %w", auctionID, ErrInvalidState)
	}

	s.log.WithField("auction_id", auctionID).Info("auction deleted")
	return nil
}

// Get returns the auction as the principal may see it.
func (s *AuctionService) Get(ctx context.Context, p Principal, auctionID string) (*AuctionView, error) {
	if err := validateID(auctionID, "auction"); err != nil {
		return nil, err
	}
	snap, err := s.store.Snapshot(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return ProjectAuction(*snap, p, s.clock.Now())
}

// List returns a page of auctions, newest first. Suppliers only see auctions
// they are invited to.
func (s *AuctionService) List(ctx context.Context, p Principal, filter AuctionFilter) (*AuctionPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	if filter.MaterialID != "" {
		if err := validateID(filter.MaterialID, "material"); err != nil {
			return nil, err
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}

	switch {
	case p.IsAdmin():
		filter.SupplierID = ""
	case p.IsSupplier():
		filter.SupplierID = p.SupplierID
	default:
		return nil, fmt.Errorf("list auctions: %w", ErrForbidden)
	}

	rows, total, err := s.store.ListAuctions(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	page := &AuctionPage{
		Data: make([]*AuctionView, 0, len(rows)),
		Pagination: Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}
	for _, row := range rows {
		view, err := ProjectSummary(row, p, now)
		if err != nil {
			return nil, err
		}
		page.Data = append(page.Data, view)
	}
	return page, nil
}

// CanSubscribe reports whether the principal may receive the auction's channel
// events. It never changes state.
func (s *AuctionService) CanSubscribe(ctx context.Context, p Principal, auctionID string) bool {
	if validateID(auctionID, "auction") != nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	if !p.IsSupplier() {
		return false
	}
	ok, err := s.store.HasInvitation(ctx, auctionID, p.SupplierID)
	if err != nil {
		s.log.WithError(err).WithField("auction_id", auctionID).Warn("subscription check failed")
		return false
	}
	return ok
}

// ReconcileOnStartup restores timers after a restart: active auctions past
// their end time are closed now, the rest are re-armed for the time left.
func (s *AuctionService) ReconcileOnStartup(ctx context.Context) (closed, rearmed int, err error) {
	active, err := s.store.ActiveAuctions(ctx)
	if err != nil {
		return 0, 0, err
	}

	now := s.clock.Now()
	var failures []error
	for _, a := range active {
		if a.EndTime == nil || !now.Before(*a.EndTime) {
			if err := s.Close(ctx, a.ID); err != nil {
				s.log.WithError(err).WithField("auction_id", a.ID).Error("failed to close overdue auction")
				failures = append(failures, fmt.Errorf("reconcile auction %s: %w", a.ID, err))
				continue
			}
			closed++
			continue
		}
		s.scheduler.Schedule(a.ID, a.EndTime.Sub(now))
		rearmed++
	}

	s.log.WithFields(logrus.Fields{"closed": closed, "rearmed": rearmed, "failed": len(failures)}).Info("auction timers reconciled")
	return closed, rearmed, errors.Join(failures...)
}

func (s *AuctionService) onTimerFired(auctionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := s.Close(ctx, auctionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.WithField("auction_id", auctionID).Warn("timer fired for a deleted auction")
			return
		}
		s.log.WithError(err).WithField("auction_id", auctionID).Error("failed to close auction")
	}
}

// checkSuppliers validates, deduplicates and verifies the existence of ids.
func (s *AuctionService) checkSuppliers(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := validateID(id, "supplier"); err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}

	missing, err := s.store.MissingSuppliers(ctx, out)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("suppliers %s: %w", strings.Join(missing, ", "), ErrNotFound)
	}
	return out, nil
}

func validateID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed %s id %q", ErrValidation, what, id)
	}
	return nil
}
