// Package types holds the websocket wire shapes shared by the gateway
// and its clients.
package types

import (
	"time"

	"github.com/tourneydesk/auction-backend/internal/auction"
)

// ClientMessage is every inbound command. Validation tags reject
// malformed payloads before any state lookup.
type ClientMessage struct {
	Type        string         `json:"type" validate:"required,oneof=startLotBidding placeBid endLotBidding cancelLotBidding"`
	LotID       string         `json:"lotId" validate:"required"`
	TeamID      string         `json:"teamId,omitempty" validate:"required_if=Type placeBid"`
	Amount      int            `json:"amount,omitempty" validate:"required_if=Type placeBid,omitempty,gt=0"`
	BasePrice   int            `json:"basePrice,omitempty" validate:"omitempty,gte=0"`
	Increment   int            `json:"increment,omitempty" validate:"omitempty,gt=0"`
	DisplayName string         `json:"displayName,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Description string         `json:"description,omitempty"`
	Stats       *auction.Stats `json:"stats,omitempty"`
}

// ServerMessage is every outbound event. Type matches the room event
// names: currentRoomState, lotBiddingStarted, bid, lotSold, lotPassed,
// lotBiddingCanceled, error.
type ServerMessage struct {
	Type  string        `json:"type"`
	Lot   *auction.Lot  `json:"lot,omitempty"`
	Room  *RoomSnapshot `json:"room,omitempty"`
	Error string        `json:"error,omitempty"`
}

// RoomSnapshot is the connect-time unicast: everything a late joiner
// needs to render the room.
type RoomSnapshot struct {
	Slug       string         `json:"slug"`
	IsActive   bool           `json:"isActive"`
	CurrentLot *auction.Lot   `json:"currentLot"`
	StartedAt  *time.Time     `json:"startedAt,omitempty"`
	SoldCount  int            `json:"soldCount"`
	AllLots    []*auction.Lot `json:"allLots"`
}
