// Package room runs one auction instance. A Room is a single goroutine
// draining a typed-message inbox, so every command for a room executes to
// completion before the next is dispatched. The Ledger purse check runs
// inside the bid handler, which means validate-and-commit is atomic per
// room: a second bid cannot be looked at until the first has fully
// resolved.
package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/auction"
	"github.com/tourneydesk/auction-backend/internal/metrics"
)

// Ledger is the slice of the external Ledger service a room calls.
type Ledger interface {
	TeamPurse(ctx context.Context, teamID string) (auction.TeamSnapshot, error)
	MarkSold(ctx context.Context, lot *auction.Lot) error
	MarkUnsold(ctx context.Context, lot *auction.Lot) error
}

type Room struct {
	slug    string
	inbox   chan Msg
	lots    map[string]*auction.Lot
	state   auction.RoomState
	members map[string]chan Event

	ledger           Ledger
	defaultIncrement int
	log              *zap.Logger
	ctx              context.Context
	cancel           context.CancelFunc
}

func New(parent context.Context, slug string, ledger Ledger, defaultIncrement int, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	if defaultIncrement <= 0 {
		defaultIncrement = auction.DefaultIncrement
	}

	r := &Room{
		slug:             slug,
		inbox:            make(chan Msg, 64),
		lots:             make(map[string]*auction.Lot),
		members:          make(map[string]chan Event),
		ledger:           ledger,
		defaultIncrement: defaultIncrement,
		log:              log.With(zap.String("slug", slug)),
		ctx:              ctx,
		cancel:           cancel,
	}
	go r.loop()
	return r
}

// Inbox is how the gateway, the hub and tests talk to the room.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Slug() string { return r.slug }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.members[msg.ConnID] = msg.Outbox
				metrics.ConnectedMembers.Inc()
				msg.Outbox <- Event{Type: EvtRoomState, Room: r.view()}

			case Leave:
				r.dropMember(msg.ConnID)

			case FromClient:
				r.handleCommand(msg)

			case GetState:
				msg.Reply <- r.view()

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleCommand(m FromClient) {
	var err error
	switch m.Cmd.Type {
	case CmdStartLot:
		err = r.startLot(m)
	case CmdPlaceBid:
		err = r.placeBid(m)
	case CmdEndLot:
		err = r.endLot(m)
	case CmdCancelLot:
		err = r.cancelLot(m)
	default:
		err = fmt.Errorf("unsupported command %q", m.Cmd.Type)
	}
	if err != nil {
		r.sendError(m.ConnID, err)
	}
}

func (r *Room) startLot(m FromClient) error {
	if !m.Conn.Auth.CanManage {
		return auction.ErrPermissionDenied
	}
	cmd := m.Cmd

	lot, ok := r.lots[cmd.LotID]
	if !ok {
		inc := cmd.Increment
		if inc <= 0 {
			inc = r.defaultIncrement
		}
		lot = auction.NewLot(r.slug, cmd.LotID, cmd.BasePrice, inc,
			cmd.DisplayName, cmd.ImageURL, cmd.Description, cmd.Stats)
		r.lots[cmd.LotID] = lot
	}
	// Re-starting an existing lot re-broadcasts it as-is: metadata is not
	// re-applied and the bid history is untouched.

	now := time.Now()
	r.state.Active = true
	r.state.CurrentLotID = lot.ID
	r.state.StartedAt = &now

	r.log.Info("lot bidding started",
		zap.String("lot_id", lot.ID), zap.Int("base_price", lot.BasePrice), zap.Int("increment", lot.Increment))
	r.broadcast(Event{Type: EvtLotStarted, Lot: lot.Clone()})
	return nil
}

func (r *Room) placeBid(m FromClient) error {
	if !m.Conn.Auth.CanBid {
		return auction.ErrPermissionDenied
	}
	cmd := m.Cmd

	lot, ok := r.lots[cmd.LotID]
	if !ok {
		return auction.ErrLotNotFound
	}
	if lot.Sold {
		return auction.ErrLotClosed
	}

	// The purse and roster are advisory reads owned by the Ledger. This
	// call blocks the room's queue, which is what keeps two purse-checked
	// bids from both passing validation before either commits.
	team, err := r.ledger.TeamPurse(r.ctx, cmd.TeamID)
	if err != nil {
		return err
	}

	bid := auction.Bid{
		TeamID:   cmd.TeamID,
		Amount:   cmd.Amount,
		LotID:    lot.ID,
		PlacedAt: time.Now(),
	}
	if err := auction.Validate(lot, team, bid); err != nil {
		metrics.BidsRejected.WithLabelValues(rejectReason(err)).Inc()
		return err
	}

	lot.Record(bid)
	metrics.BidsAccepted.Inc()
	r.log.Info("bid recorded",
		zap.String("lot_id", lot.ID), zap.String("team_id", bid.TeamID), zap.Int("amount", bid.Amount))
	r.broadcast(Event{Type: EvtBid, Lot: lot.Clone()})
	return nil
}

func (r *Room) endLot(m FromClient) error {
	if !m.Conn.Auth.CanManage {
		return auction.ErrPermissionDenied
	}
	lot, ok := r.lots[m.Cmd.LotID]
	if !ok {
		return auction.ErrLotNotFound
	}
	if lot.Sold {
		return auction.ErrLotClosed
	}

	selling := lot.Close()
	r.state.Active = false
	r.state.CurrentLotID = ""
	r.state.StartedAt = nil

	evt := EvtLotPassed
	persist := r.ledger.MarkUnsold
	if selling != nil {
		r.state.SoldCount++
		evt = EvtLotSold
		persist = r.ledger.MarkSold
		metrics.LotsSold.Inc()
		r.log.Info("lot sold",
			zap.String("lot_id", lot.ID), zap.String("team_id", selling.TeamID), zap.Int("amount", selling.Amount))
	} else {
		metrics.LotsPassed.Inc()
		r.log.Info("lot passed with no bids", zap.String("lot_id", lot.ID))
	}

	// The sale is already committed in-room; a Ledger failure here is
	// reported to the issuer but the members still converge on the
	// committed state.
	if err := persist(r.ctx, lot); err != nil {
		r.log.Error("persisting lot outcome failed", zap.String("lot_id", lot.ID), zap.Error(err))
		r.sendError(m.ConnID, err)
	}

	r.broadcast(Event{Type: evt, Lot: lot.Clone()})
	return nil
}

func (r *Room) cancelLot(m FromClient) error {
	if !m.Conn.Auth.CanManage {
		return auction.ErrPermissionDenied
	}
	lot, ok := r.lots[m.Cmd.LotID]
	if !ok {
		return auction.ErrLotNotFound
	}

	lot.Reset()
	r.state.Active = false
	r.state.CurrentLotID = ""
	r.state.StartedAt = nil

	r.log.Info("lot bidding canceled", zap.String("lot_id", lot.ID))
	r.broadcast(Event{Type: EvtLotCanceled, Lot: lot.Clone()})
	return nil
}

func (r *Room) view() *View {
	v := &View{
		Slug:    r.slug,
		State:   r.state,
		Lots:    make([]*auction.Lot, 0, len(r.lots)),
		Members: len(r.members),
	}
	for _, lot := range r.lots {
		v.Lots = append(v.Lots, lot.Clone())
	}
	if cur, ok := r.lots[r.state.CurrentLotID]; ok {
		v.CurrentLot = cur.Clone()
	}
	return v
}

func (r *Room) sendError(connID string, err error) {
	ch, ok := r.members[connID]
	if !ok {
		return
	}
	select {
	case ch <- Event{Type: EvtError, Message: err.Error()}:
	default:
		r.dropMember(connID)
	}
}

func (r *Room) broadcast(evt Event) {
	for id, ch := range r.members {
		select {
		case ch <- evt:
		default:
			// Slow or dead member, drop it rather than wedge the room.
			r.dropMember(id)
		}
	}
}

func (r *Room) dropMember(connID string) {
	ch, ok := r.members[connID]
	if !ok {
		return
	}
	close(ch)
	delete(r.members, connID)
	metrics.ConnectedMembers.Dec()
}

func (r *Room) shutdown() {
	for id := range r.members {
		r.dropMember(id)
	}
	r.cancel()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, auction.ErrLotClosed):
		return "lot_closed"
	case errors.Is(err, auction.ErrBelowBasePrice):
		return "below_base_price"
	case errors.Is(err, auction.ErrBelowMinimumIncrement):
		return "below_minimum_increment"
	case errors.Is(err, auction.ErrMustIncreaseOwnBid):
		return "must_increase_own_bid"
	case errors.Is(err, auction.ErrTeamFull):
		return "team_full"
	case errors.Is(err, auction.ErrExceedsPurse):
		return "exceeds_purse"
	default:
		return "other"
	}
}
