package auction

import "errors"

// Lookup failures.
var (
	ErrRoomNotFound = errors.New("auction room not found")
	ErrLotNotFound  = errors.New("lot not found")
	ErrTeamNotFound = errors.New("team not found")
)

// Bid rejections. All user-facing and recoverable: the issuing connection
// gets an error event, nobody else hears about it.
var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrLotClosed             = errors.New("bidding already closed for lot")
	ErrBelowBasePrice        = errors.New("bid below base price")
	ErrBelowMinimumIncrement = errors.New("bid below minimum increment")
	ErrMustIncreaseOwnBid    = errors.New("team must raise its own bid")
	ErrTeamFull              = errors.New("team roster is full")
	ErrExceedsPurse          = errors.New("bid exceeds team purse")
)

// ErrLedgerUnavailable degrades a single command, never the room.
var ErrLedgerUnavailable = errors.New("ledger service unavailable")
