// Package ws is the connection gateway: it resolves which room a
// websocket belongs to, runs the authorization handshake, and relays
// room broadcasts back over the socket.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/auction"
	"github.com/tourneydesk/auction-backend/internal/authz"
	"github.com/tourneydesk/auction-backend/internal/hub"
	"github.com/tourneydesk/auction-backend/internal/room"
	"github.com/tourneydesk/auction-backend/internal/types"
)

// SessionCookie carries the caller's Ledger credential. An absent cookie
// admits the connection as a read-only viewer.
const SessionCookie = "auction_session"

func Handler(h *hub.Hub, oracle *authz.Oracle, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("slug")
		if slug == "" {
			http.Error(w, "missing slug", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Slug: slug, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "auction not found", http.StatusNotFound)
			return
		}

		credential := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			credential = c.Value
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		connCtx := oracle.Resolve(r.Context(), connID, credential, slug)
		defer oracle.Forget(connID)

		log.Info("member connected",
			zap.String("slug", slug), zap.String("conn_id", connID),
			zap.Bool("can_bid", connCtx.Auth.CanBid), zap.Bool("can_manage", connCtx.Auth.CanManage))

		out := make(chan room.Event, 16)
		rm.Inbox() <- room.Join{ConnID: connID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ConnID: connID} }()

		// Writer goroutine: the room closes out when it drops us.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for evt := range out {
				payload, err := json.Marshal(toServerMessage(evt))
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop. Viewers idle for long stretches between lots, so
		// reads block on the request context alone.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}
			if err := validateMessage(cm); err != nil {
				writeError(r.Context(), conn, err.Error())
				continue
			}

			rm.Inbox() <- room.FromClient{
				ConnID: connID,
				Conn:   connCtx,
				Cmd:    toRoomCommand(cm),
			}
		}
	}
}

func toRoomCommand(m types.ClientMessage) room.Command {
	cmd := room.Command{
		Type:        room.CommandType(m.Type),
		LotID:       m.LotID,
		TeamID:      m.TeamID,
		Amount:      m.Amount,
		BasePrice:   m.BasePrice,
		Increment:   m.Increment,
		DisplayName: m.DisplayName,
		ImageURL:    m.ImageURL,
		Description: m.Description,
	}
	if m.Stats != nil {
		cmd.Stats = *m.Stats
	}
	return cmd
}

func toServerMessage(evt room.Event) types.ServerMessage {
	msg := types.ServerMessage{
		Type:  string(evt.Type),
		Lot:   evt.Lot,
		Error: evt.Message,
	}
	if evt.Room != nil {
		msg.Room = snapshotOf(evt.Room)
	}
	return msg
}

func snapshotOf(v *room.View) *types.RoomSnapshot {
	lots := v.Lots
	if lots == nil {
		lots = []*auction.Lot{}
	}
	return &types.RoomSnapshot{
		Slug:       v.Slug,
		IsActive:   v.State.Active,
		CurrentLot: v.CurrentLot,
		StartedAt:  v.State.StartedAt,
		SoldCount:  v.State.SoldCount,
		AllLots:    lots,
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: string(room.EvtError), Error: msg})
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
