package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/auction"
	"github.com/tourneydesk/auction-backend/internal/authz"
	"github.com/tourneydesk/auction-backend/internal/hub"
	"github.com/tourneydesk/auction-backend/internal/ledger"
	"github.com/tourneydesk/auction-backend/internal/room"
)

type nopLedger struct{}

func (nopLedger) TeamPurse(ctx context.Context, teamID string) (auction.TeamSnapshot, error) {
	return auction.TeamSnapshot{}, auction.ErrTeamNotFound
}
func (nopLedger) MarkSold(ctx context.Context, lot *auction.Lot) error   { return nil }
func (nopLedger) MarkUnsold(ctx context.Context, lot *auction.Lot) error { return nil }

type nopRoles struct{}

func (nopRoles) UserRole(ctx context.Context, credential string) (ledger.RoleInfo, error) {
	return ledger.RoleInfo{}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, nopLedger{}, 100, zap.NewNop())
	oracle := authz.NewOracle(nopRoles{}, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(h, oracle, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, h
}

func postJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestCreateAuction_Idempotent(t *testing.T) {
	srv, _ := newTestServer(t)

	var first, second struct {
		Slug string `json:"slug"`
	}
	assert.Equal(t, http.StatusCreated, postJSON(t, srv.URL+"/create-auction/ipl-2026", &first))
	assert.Equal(t, "ipl-2026", first.Slug)

	assert.Equal(t, http.StatusCreated, postJSON(t, srv.URL+"/create-auction/ipl-2026", &second))
	assert.Equal(t, "ipl-2026", second.Slug)

	var listing struct {
		Rooms []hub.RoomInfo `json:"rooms"`
		Count int            `json:"count"`
	}
	getJSON(t, srv.URL+"/active-auctions", &listing)
	assert.Equal(t, 1, listing.Count)
}

func TestCheckAuction(t *testing.T) {
	srv, _ := newTestServer(t)

	var missing struct {
		Exists bool               `json:"exists"`
		State  *auction.RoomState `json:"state"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/check-auction/nope", &missing))
	assert.False(t, missing.Exists)
	assert.Nil(t, missing.State)

	postJSON(t, srv.URL+"/create-auction/ipl-2026", nil)

	var present struct {
		Exists bool               `json:"exists"`
		State  *auction.RoomState `json:"state"`
	}
	getJSON(t, srv.URL+"/check-auction/ipl-2026", &present)
	assert.True(t, present.Exists)
	require.NotNil(t, present.State)
	assert.False(t, present.State.Active)
}

func TestRestartAuction(t *testing.T) {
	srv, h := newTestServer(t)

	var out struct {
		Success bool   `json:"success"`
		Slug    string `json:"slug"`
		Message string `json:"message"`
	}

	// Restarting an unknown slug just brings it up.
	postJSON(t, srv.URL+"/restart-auction/ipl-2026", &out)
	assert.True(t, out.Success)
	assert.Equal(t, "ipl-2026", out.Slug)

	// Put the room mid-lot, then restarting reports already running.
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Slug: "ipl-2026", Reply: reply}
	rm := <-reply
	require.NotNil(t, rm)
	rm.Inbox() <- room.FromClient{
		ConnID: "mgr",
		Conn:   authz.ConnectionContext{ConnID: "mgr", Auth: authz.Snapshot{CanManage: true}},
		Cmd:    room.Command{Type: room.CmdStartLot, LotID: "lot-1", BasePrice: 1000},
	}

	postJSON(t, srv.URL+"/restart-auction/ipl-2026", &out)
	assert.False(t, out.Success)
	assert.Equal(t, "auction already running", out.Message)
}

func TestActiveAuctions_Empty(t *testing.T) {
	srv, _ := newTestServer(t)

	var listing struct {
		Rooms []hub.RoomInfo `json:"rooms"`
		Count int            `json:"count"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/active-auctions", &listing))
	assert.Zero(t, listing.Count)
	assert.Empty(t, listing.Rooms)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestWSRequiresSlugAndKnownRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Get(srv.URL + "/ws?slug=nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
