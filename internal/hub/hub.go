// Package hub is the process-wide directory of auction rooms, keyed by
// slug. Like the rooms it owns, the hub is a single goroutine draining a
// typed-message inbox.
package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/auction"
	"github.com/tourneydesk/auction-backend/internal/metrics"
	"github.com/tourneydesk/auction-backend/internal/room"
)

type HubMsg interface{ isHubMsg() }

// EnsureRoom creates the room if missing. Idempotent: an existing slug
// replies with the existing room, no side effects.
type EnsureRoom struct {
	Slug  string
	Reply chan *room.Room
}

type GetRoom struct {
	Slug  string
	Reply chan *room.Room // nil when absent
}

// RemoveRoom tears the room down and drops all members. Replies false
// when the slug is unknown.
type RemoveRoom struct {
	Slug  string
	Reply chan bool
}

type ListRooms struct {
	Reply chan []RoomInfo
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

// RoomInfo is one row of the active-auctions listing: a snapshot, not a
// live handle.
type RoomInfo struct {
	Slug  string            `json:"slug"`
	State auction.RoomState `json:"state"`
}

type Hub struct {
	inbox chan HubMsg
	rooms map[string]*room.Room

	ledger           room.Ledger
	defaultIncrement int
	log              *zap.Logger
	ctx              context.Context
	cancel           context.CancelFunc
}

func NewHub(parent context.Context, ledger room.Ledger, defaultIncrement int, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:            make(chan HubMsg, 64),
		rooms:            make(map[string]*room.Room),
		ledger:           ledger,
		defaultIncrement: defaultIncrement,
		log:              log,
		ctx:              ctx,
		cancel:           cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if r := h.rooms[msg.Slug]; r != nil {
					msg.Reply <- r
					break
				}
				r := room.New(h.ctx, msg.Slug, h.ledger, h.defaultIncrement, h.log)
				h.rooms[msg.Slug] = r
				metrics.ActiveRooms.Inc()
				h.log.Info("auction room created", zap.String("slug", msg.Slug))
				msg.Reply <- r

			case GetRoom:
				msg.Reply <- h.rooms[msg.Slug]

			case RemoveRoom:
				r, ok := h.rooms[msg.Slug]
				if ok {
					r.Inbox() <- room.Shutdown{}
					delete(h.rooms, msg.Slug)
					metrics.ActiveRooms.Dec()
					h.log.Info("auction room removed", zap.String("slug", msg.Slug))
				}
				msg.Reply <- ok

			case ListRooms:
				msg.Reply <- h.list()

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) list() []RoomInfo {
	infos := make([]RoomInfo, 0, len(h.rooms))
	for slug, r := range h.rooms {
		reply := make(chan *room.View, 1)
		r.Inbox() <- room.GetState{Reply: reply}
		select {
		case v := <-reply:
			infos = append(infos, RoomInfo{Slug: slug, State: v.State})
		case <-time.After(time.Second):
			// A wedged room (stuck on a slow ledger call) still lists,
			// just without fresh state.
			infos = append(infos, RoomInfo{Slug: slug})
		}
	}
	return infos
}

func (h *Hub) shutdown() {
	for slug, r := range h.rooms {
		r.Inbox() <- room.Shutdown{}
		delete(h.rooms, slug)
		metrics.ActiveRooms.Dec()
	}
	h.cancel()
}
