package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/authz"
	"github.com/tourneydesk/auction-backend/internal/hub"
	"github.com/tourneydesk/auction-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, oracle *authz.Oracle, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/create-auction/{slug}", CreateAuction(h))
	r.Get("/check-auction/{slug}", CheckAuction(h))
	r.Post("/restart-auction/{slug}", RestartAuction(h))
	r.Get("/active-auctions", ActiveAuctions(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, oracle, log))
	return r
}
