// Package metrics exposes the auction engine's counters and the
// dedicated /metrics listener.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BidsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auction_bids_accepted_total",
		Help: "bids that passed validation and were recorded",
	})
	BidsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_bids_rejected_total",
		Help: "bids rejected, by reason",
	}, []string{"reason"})
	LotsSold = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auction_lots_sold_total",
		Help: "lots closed with a winning bid",
	})
	LotsPassed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auction_lots_passed_total",
		Help: "lots closed with no bids",
	})
	ActiveRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "auction_active_rooms",
		Help: "rooms currently registered",
	})
	ConnectedMembers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "auction_connected_members",
		Help: "websocket members across all rooms",
	})
)

func init() {
	prometheus.MustRegister(BidsAccepted, BidsRejected, LotsSold, LotsPassed, ActiveRooms, ConnectedMembers)
}

// StartServer runs a small HTTP server for /metrics and /healthz on its
// own port, off the public router. Returns immediately.
func StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
