package services

import (
	"fmt"
	"sort"
	"time"

	"auction-backend/models"

	"github.com/shopspring/decimal"
)

// AuctionSnapshot is everything persisted about one auction. Associations
// (Material, Winner, Bid.Supplier, Invitation.Supplier) should be loaded.
type AuctionSnapshot struct {
	Auction     models.Auction
	Bids        []models.Bid
	Invitations []models.Invitation
}

// AuctionSummary is one row of the auction list.
type AuctionSummary struct {
	Auction   models.Auction
	BidsCount int64
	LowestBid decimal.NullDecimal
}

// AuctionView is the role-dependent projection returned to clients.
type AuctionView struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	MaterialID          *string              `json:"material_id"`
	MaterialName        string               `json:"material_name"`
	MaterialUnit        string               `json:"material_unit"`
	MaterialDescription string               `json:"material_description,omitempty"`
	CategoryName        string               `json:"category_name,omitempty"`
	CategoryIcon        string               `json:"category_icon,omitempty"`
	CustomMaterial      bool                 `json:"custom_material"`
	Quantity            decimal.Decimal      `json:"quantity"`
	Unit                string               `json:"unit"`
	DurationMinutes     int                  `json:"duration_minutes"`
	Status              models.AuctionStatus `json:"status"`
	StartTime           *time.Time           `json:"start_time"`
	EndTime             *time.Time           `json:"end_time"`
	RemainingSeconds    *int64               `json:"remaining_seconds,omitempty"`

	WinnerID         *string          `json:"winner_id"`
	WinnerName       *string          `json:"winner_name"`
	WinningBid       *decimal.Decimal `json:"winning_bid"`
	ResultsPublished bool             `json:"results_published"`
	ResultsHidden    bool             `json:"results_hidden,omitempty"`
	YouWon           bool             `json:"you_won,omitempty"`

	LowestBid *decimal.Decimal `json:"lowest_bid,omitempty"`
	BidsCount *int64           `json:"bids_count,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	Invitations      []InvitationView `json:"invitations,omitempty"`
	InvitationsCount *int             `json:"invitations_count,omitempty"`
	Bids             []BidView        `json:"bids,omitempty"`
	MyBids           []BidView        `json:"my_bids,omitempty"`
}

// InvitationView is an invitation as shown to administrators.
type InvitationView struct {
	SupplierID  string                  `json:"supplier_id"`
	CompanyName string                  `json:"company_name"`
	City        string                  `json:"city"`
	IsLocal     bool                    `json:"is_local"`
	Status      models.InvitationStatus `json:"status"`
	InvitedAt   time.Time               `json:"invited_at"`
}

// BidView is a single bid. CompanyName is only filled for administrators.
type BidView struct {
	ID          string          `json:"id"`
	SupplierID  string          `json:"supplier_id"`
	CompanyName string          `json:"company_name,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProjectAuction derives what viewer may see of an auction at now.
// It has no side effects and depends only on its arguments.
//
// Administrators see everything. A supplier must hold an invitation and sees
// its own bids, the invitation count, the lowest bid while the auction runs,
// and the outcome only once results are published and only if it won.
func ProjectAuction(snap AuctionSnapshot, viewer Principal, now time.Time) (*AuctionView, error) {
	a := snap.Auction
	view := baseView(&a, now)

	switch {
	case viewer.IsAdmin():
		view.Invitations = make([]InvitationView, 0, len(snap.Invitations))
		for _, inv := range snap.Invitations {
			view.Invitations = append(view.Invitations, invitationView(inv))
		}

		bids := sortedBids(snap.Bids)
		view.Bids = make([]BidView, 0, len(bids))
		for _, b := range bids {
			bv := bidView(b)
			if b.Supplier != nil {
				bv.CompanyName = b.Supplier.CompanyName
			}
			view.Bids = append(view.Bids, bv)
		}

		count := int64(len(bids))
		view.BidsCount = &count
		if len(bids) > 0 {
			lowest := bids[0].Amount
			view.LowestBid = &lowest
		}
		revealOutcome(view, &a)
		return view, nil

	case viewer.IsSupplier():
		if !invited(snap.Invitations, viewer.SupplierID) {
			return nil, fmt.Errorf("auction %s: %w", a.ID, ErrForbidden)
		}

		count := len(snap.Invitations)
		view.InvitationsCount = &count

		view.MyBids = make([]BidView, 0)
		for _, b := range snap.Bids {
			if b.SupplierID == viewer.SupplierID {
				view.MyBids = append(view.MyBids, bidView(b))
			}
		}
		sort.SliceStable(view.MyBids, func(i, j int) bool {
			return view.MyBids[i].CreatedAt.After(view.MyBids[j].CreatedAt)
		})

		if a.Status == models.AuctionStatusActive {
			if bids := sortedBids(snap.Bids); len(bids) > 0 {
				lowest := bids[0].Amount
				view.LowestBid = &lowest
			}
		}
		supplierOutcome(view, &a, viewer.SupplierID)
		return view, nil
	}

	return nil, fmt.Errorf("auction %s: role %q: %w", a.ID, viewer.Role, ErrForbidden)
}

// ProjectSummary applies the same disclosure rules to a list row. The caller
// is responsible for listing only auctions a supplier is invited to.
func ProjectSummary(row AuctionSummary, viewer Principal, now time.Time) (*AuctionView, error) {
	a := row.Auction
	view := baseView(&a, now)

	switch {
	case viewer.IsAdmin():
		count := row.BidsCount
		view.BidsCount = &count
		if row.LowestBid.Valid {
			lowest := row.LowestBid.Decimal
			view.LowestBid = &lowest
		}
		revealOutcome(view, &a)
		return view, nil

	case viewer.IsSupplier():
		if a.Status == models.AuctionStatusActive {
			count := row.BidsCount
			view.BidsCount = &count
			if row.LowestBid.Valid {
				lowest := row.LowestBid.Decimal
				view.LowestBid = &lowest
			}
		}
		supplierOutcome(view, &a, viewer.SupplierID)
		return view, nil
	}

	return nil, fmt.Errorf("auction %s: role %q: %w", a.ID, viewer.Role, ErrForbidden)
}

// RemainingSeconds is max(0, floor((end-now)/1s)).
func RemainingSeconds(end, now time.Time) int64 {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

func baseView(a *models.Auction, now time.Time) *AuctionView {
	view := &AuctionView{
		ID:               a.ID,
		Title:            a.Title,
		Description:      a.Description,
		MaterialID:       a.MaterialID,
		MaterialName:     a.MaterialName(),
		MaterialUnit:     a.MaterialUnit(),
		Quantity:         a.Quantity,
		Unit:             a.Unit,
		DurationMinutes:  a.DurationMinutes,
		Status:           a.Status,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		ResultsPublished: a.ResultsPublished,
		CreatedBy:        a.CreatedBy,
		CreatedAt:        a.CreatedAt,
	}

	if _, ok := a.MaterialRef().(models.CustomMaterial); ok {
		view.CustomMaterial = true
	}
	if a.Material != nil {
		view.MaterialDescription = a.Material.Description
		if a.Material.Category != nil {
			view.CategoryName = a.Material.Category.Name
			view.CategoryIcon = a.Material.Category.Icon
		}
	}

	if a.Status == models.AuctionStatusActive && a.EndTime != nil {
		remaining := RemainingSeconds(*a.EndTime, now)
		view.RemainingSeconds = &remaining
	}
	return view
}

func revealOutcome(view *AuctionView, a *models.Auction) {
	view.WinnerID = a.WinnerID
	if a.Winner != nil {
		name := a.Winner.CompanyName
		view.WinnerName = &name
	}
	if a.WinningBid.Valid {
		amount := a.WinningBid.Decimal
		view.WinningBid = &amount
	}
}

// supplierOutcome leaves winner fields empty unless results are published and
// the viewer is the winner.
func supplierOutcome(view *AuctionView, a *models.Auction, supplierID string) {
	view.WinnerID, view.WinnerName, view.WinningBid = nil, nil, nil

	if a.Status != models.AuctionStatusCompleted {
		return
	}
	if !a.ResultsPublished {
		view.ResultsHidden = true
		return
	}
	if a.WinnerID != nil && *a.WinnerID == supplierID {
		view.YouWon = true
		revealOutcome(view, a)
	}
}

func invited(invitations []models.Invitation, supplierID string) bool {
	for _, inv := range invitations {
		if inv.SupplierID == supplierID {
			return true
		}
	}
	return false
}

// sortedBids orders by amount, then earliest first. The input is not modified.
func sortedBids(bids []models.Bid) []models.Bid {
	out := append([]models.Bid(nil), bids...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c < 0
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func invitationView(inv models.Invitation) InvitationView {
	v := InvitationView{
		SupplierID: inv.SupplierID,
		Status:     inv.Status,
		InvitedAt:  inv.InvitedAt,
	}
	if inv.Supplier != nil {
		v.CompanyName = inv.Supplier.CompanyName
		v.City = inv.Supplier.City
		v.IsLocal = inv.Supplier.IsLocal
	}
	return v
}

func bidView(b models.Bid) BidView {
	return BidView{
		ID:         b.ID,
		SupplierID: b.SupplierID,
		Amount:     b.Amount,
		CreatedAt:  b.CreatedAt,
	}
}
