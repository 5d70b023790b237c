package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourneydesk/auction-backend/internal/auction"
	"github.com/tourneydesk/auction-backend/internal/hub"
	"github.com/tourneydesk/auction-backend/internal/room"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// CreateAuction is idempotent: creating an existing slug answers with the
// same slug and touches nothing.
func CreateAuction(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			http.Error(w, "missing slug", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Slug: slug, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create auction", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Slug string `json:"slug"`
		}{Slug: slug})
	}
}

func CheckAuction(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Slug: slug, Reply: reply}
		rm := <-reply

		out := struct {
			Exists bool               `json:"exists"`
			State  *auction.RoomState `json:"state"`
		}{}
		if rm != nil {
			out.Exists = true
			stateReply := make(chan *room.View, 1)
			rm.Inbox() <- room.GetState{Reply: stateReply}
			v := <-stateReply
			out.State = &v.State
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// RestartAuction tears down an idle room and brings up a fresh one. A
// room that is mid-lot reports success=false and is left alone.
func RestartAuction(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			http.Error(w, "missing slug", http.StatusBadRequest)
			return
		}

		type result struct {
			Success bool   `json:"success"`
			Slug    string `json:"slug"`
			Message string `json:"message"`
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Slug: slug, Reply: reply}
		rm := <-reply

		if rm != nil {
			stateReply := make(chan *room.View, 1)
			rm.Inbox() <- room.GetState{Reply: stateReply}
			if v := <-stateReply; v.State.Active {
				writeJSON(w, http.StatusOK, result{
					Success: false, Slug: slug, Message: "auction already running",
				})
				return
			}
			removed := make(chan bool, 1)
			h.Inbox() <- hub.RemoveRoom{Slug: slug, Reply: removed}
			<-removed
		}

		ensure := make(chan *room.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Slug: slug, Reply: ensure}
		if <-ensure == nil {
			http.Error(w, "failed to restart auction", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result{
			Success: true, Slug: slug, Message: "auction restarted",
		})
	}
}

func ActiveAuctions(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []hub.RoomInfo, 1)
		h.Inbox() <- hub.ListRooms{Reply: reply}
		rooms := <-reply

		writeJSON(w, http.StatusOK, struct {
			Rooms []hub.RoomInfo `json:"rooms"`
			Count int            `json:"count"`
		}{Rooms: rooms, Count: len(rooms)})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
