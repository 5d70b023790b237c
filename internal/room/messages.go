package room

import (
	"github.com/tourneydesk/auction-backend/internal/auction"
	"github.com/tourneydesk/auction-backend/internal/authz"
)

type Msg interface{ isRoomMsg() }

// Join registers a member and immediately unicasts the full room
// snapshot to its outbox.
type Join struct {
	ConnID string
	Outbox chan Event
}

func (Join) isRoomMsg() {}

// Leave has no bidding side effects; it only drops membership.
type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

// FromClient carries one command plus the connection context resolved at
// connect time. Handlers never consult any shared authorization state.
type FromClient struct {
	ConnID string
	Conn   authz.ConnectionContext
	Cmd    Command
}

func (FromClient) isRoomMsg() {}

type GetState struct {
	Reply chan *View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type CommandType string

const (
	CmdStartLot  CommandType = "startLotBidding"
	CmdPlaceBid  CommandType = "placeBid"
	CmdEndLot    CommandType = "endLotBidding"
	CmdCancelLot CommandType = "cancelLotBidding"
)

// Command is the union of the four client commands; unused fields stay
// zero. Lot metadata only matters the first time a lot id is seen.
type Command struct {
	Type        CommandType
	LotID       string
	TeamID      string
	Amount      int
	BasePrice   int
	Increment   int
	DisplayName string
	ImageURL    string
	Description string
	Stats       auction.Stats
}

type EventType string

const (
	EvtRoomState   EventType = "currentRoomState"
	EvtLotStarted  EventType = "lotBiddingStarted"
	EvtBid         EventType = "bid"
	EvtLotSold     EventType = "lotSold"
	EvtLotPassed   EventType = "lotPassed"
	EvtLotCanceled EventType = "lotBiddingCanceled"
	EvtError       EventType = "error"
)

// Event is what members receive. Lots are clones, safe to marshal off the
// room goroutine. Errors are unicast to the issuer only.
type Event struct {
	Type    EventType
	Lot     *auction.Lot
	Room    *View
	Message string
}

// View is a read-only snapshot of the room, for the connect unicast, the
// admin surface and tests.
type View struct {
	Slug       string
	State      auction.RoomState
	CurrentLot *auction.Lot
	Lots       []*auction.Lot
	Members    int
}
