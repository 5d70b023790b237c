package auction

import "time"

// DefaultIncrement is the fallback minimum raise when a lot is opened
// without an explicit increment.
const DefaultIncrement = 100

// Stats is the two-number stat line shown next to a lot.
type Stats struct {
	Matches int `json:"matches"`
	Points  int `json:"points"`
}

// Bid is immutable once recorded. Cancellation clears a lot's whole log,
// it never redacts individual entries.
type Bid struct {
	TeamID   string    `json:"teamId"`
	Amount   int       `json:"amount"`
	LotID    string    `json:"lotId"`
	PlacedAt time.Time `json:"placedAt"`
}

// Lot is one entity being auctioned inside a room. Created lazily the
// first time a start command names an unseen lot id, destroyed only with
// the owning room.
type Lot struct {
	ID          string `json:"id"`
	RoomSlug    string `json:"roomSlug"`
	DisplayName string `json:"displayName"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Stats       Stats  `json:"stats"`
	BasePrice   int    `json:"basePrice"`
	Increment   int    `json:"increment"`

	CurrentBid *Bid  `json:"currentBid"`
	BidLog     []Bid `json:"biddingLog"`
	Sold       bool  `json:"isSold"`
	SellingBid *Bid  `json:"sellingBid"`
}

func NewLot(roomSlug, id string, basePrice, increment int, name, imageURL, description string, stats Stats) *Lot {
	if increment <= 0 {
		increment = DefaultIncrement
	}
	if basePrice < 0 {
		basePrice = 0
	}
	return &Lot{
		ID:          id,
		RoomSlug:    roomSlug,
		DisplayName: name,
		ImageURL:    imageURL,
		Description: description,
		Stats:       stats,
		BasePrice:   basePrice,
		Increment:   increment,
		BidLog:      []Bid{},
	}
}

// Record appends b to the log and makes it the current high bid. Callers
// must have run Validate first; Record is a no-op on a sold lot so the
// frozen-after-sold invariant holds even on misuse.
func (l *Lot) Record(b Bid) {
	if l.Sold {
		return
	}
	l.BidLog = append(l.BidLog, b)
	l.CurrentBid = &l.BidLog[len(l.BidLog)-1]
}

// Close marks the lot sold and freezes it. The selling bid is set exactly
// once; closing an already-sold lot returns the original outcome.
func (l *Lot) Close() *Bid {
	if l.Sold {
		return l.SellingBid
	}
	l.Sold = true
	l.SellingBid = l.CurrentBid
	return l.SellingBid
}

// Reset returns the lot to its pre-bidding condition. Destructive: the
// bid log is discarded, not archived.
func (l *Lot) Reset() {
	l.CurrentBid = nil
	l.BidLog = []Bid{}
	l.Sold = false
	l.SellingBid = nil
}

// Clone copies the lot deeply enough that broadcast consumers never share
// mutable state with the room goroutine.
func (l *Lot) Clone() *Lot {
	c := *l
	c.BidLog = make([]Bid, len(l.BidLog))
	copy(c.BidLog, l.BidLog)
	if l.CurrentBid != nil {
		b := *l.CurrentBid
		c.CurrentBid = &b
	}
	if l.SellingBid != nil {
		b := *l.SellingBid
		c.SellingBid = &b
	}
	return &c
}

// RoomState is the per-room auction cycle: Idle until a lot is opened,
// Bidding while one is, back to Idle when it sells, passes or is canceled.
type RoomState struct {
	Active       bool       `json:"isActive"`
	CurrentLotID string     `json:"currentLotId,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	SoldCount    int        `json:"soldCount"`
}

// TeamSnapshot is the Ledger service's view of a team at bid time. Owned
// externally, fetched fresh on every bid attempt, never cached.
type TeamSnapshot struct {
	Purse         int `json:"purse"`
	RosterSize    int `json:"currentRosterSize"`
	MaxRosterSize int `json:"maxRosterSize"`
}
