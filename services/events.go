package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types as sent on the websocket.
const (
	EventAuctionStarted   = "auction_started"
	EventNewBid           = "new_bid"
	EventAuctionEnded     = "auction_ended"
	EventAuctionCancelled = "auction_cancelled"
)

// Broadcaster delivers auction events to connected clients. Delivery is
// best-effort: implementations must not block the caller.
type Broadcaster interface {
	AuctionStarted(AuctionStartedEvent)
	NewBid(NewBidEvent)
	AuctionEnded(AuctionEndedEvent)
	AuctionCancelled(AuctionCancelledEvent)
}

// AuctionStartedEvent is announced to every client.
type AuctionStartedEvent struct {
	AuctionID       string    `json:"auction_id"`
	Title           string    `json:"title"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// NewBidEvent is sent to the auction's channel after every accepted bid.
type NewBidEvent struct {
	AuctionID        string          `json:"auction_id"`
	LowestBid        decimal.Decimal `json:"lowest_bid"`
	BidsCount        int64           `json:"bids_count"`
	Timestamp        time.Time       `json:"timestamp"`
	TimeExtended     bool            `json:"time_extended,omitempty"`
	NewEndTime       *time.Time      `json:"new_end_time,omitempty"`
	ExtensionSeconds int             `json:"extension_seconds,omitempty"`
}

// WinnerSummary identifies the winning supplier and price.
type WinnerSummary struct {
	SupplierID  string          `json:"supplier_id"`
	CompanyName string          `json:"company_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// AuctionEndedEvent is sent to the auction's channel when it completes.
// Winner is nil when no bids were placed.
type AuctionEndedEvent struct {
	AuctionID string         `json:"auction_id"`
	Winner    *WinnerSummary `json:"winner"`
	EndTime   time.Time      `json:"end_time"`
}

// AuctionCancelledEvent is sent to the auction's channel on cancellation.
type AuctionCancelledEvent struct {
	AuctionID string `json:"auction_id"`
}

// NopBroadcaster discards every event.
type NopBroadcaster struct{}

func (NopBroadcaster) AuctionStarted(AuctionStartedEvent)     {}
func (NopBroadcaster) NewBid(NewBidEvent)                     {}
func (NopBroadcaster) AuctionEnded(AuctionEndedEvent)         {}
func (NopBroadcaster) AuctionCancelled(AuctionCancelledEvent) {}
