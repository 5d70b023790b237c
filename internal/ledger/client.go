// Package ledger is the HTTP client for the external Ledger &
// Authorization Service: the system of record for viewer roles, team
// purses and final sale prices. The auction core only ever reads from it,
// except for reporting a lot's terminal outcome.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tourneydesk/auction-backend/internal/auction"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// RoleInfo is the Ledger's answer for one credential. canManageAuction is
// not on the wire; the authz package derives it from the roles.
type RoleInfo struct {
	Roles    []string `json:"roles"`
	TeamRole string   `json:"teamRole"`
	TeamID   string   `json:"teamId"`
	CanBid   bool     `json:"canBid"`
}

func (c *Client) UserRole(ctx context.Context, credential string) (RoleInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/user-role", nil)
	if err != nil {
		return RoleInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return RoleInfo{}, fmt.Errorf("%w: %v", auction.ErrLedgerUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return RoleInfo{}, fmt.Errorf("%w: user-role http %d", auction.ErrLedgerUnavailable, res.StatusCode)
	}

	var out RoleInfo
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return RoleInfo{}, fmt.Errorf("%w: decoding user-role: %v", auction.ErrLedgerUnavailable, err)
	}
	return out, nil
}

// TeamPurse fetches the team's purse and roster fresh. Never cached: the
// numbers belong to the Ledger and go stale the moment another sale lands.
func (c *Client) TeamPurse(ctx context.Context, teamID string) (auction.TeamSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/team-purse/"+teamID, nil)
	if err != nil {
		return auction.TeamSnapshot{}, err
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return auction.TeamSnapshot{}, fmt.Errorf("%w: %v", auction.ErrLedgerUnavailable, err)
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusNotFound:
		return auction.TeamSnapshot{}, auction.ErrTeamNotFound
	case res.StatusCode >= 300:
		return auction.TeamSnapshot{}, fmt.Errorf("%w: team-purse http %d", auction.ErrLedgerUnavailable, res.StatusCode)
	}

	var out auction.TeamSnapshot
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return auction.TeamSnapshot{}, fmt.Errorf("%w: decoding team-purse: %v", auction.ErrLedgerUnavailable, err)
	}
	return out, nil
}

// MarkSold persists the final sale price for a lot.
func (c *Client) MarkSold(ctx context.Context, lot *auction.Lot) error {
	return c.postLot(ctx, "/mark-sold", lot)
}

// MarkUnsold reports a lot that closed with no bids. A pass is a distinct
// terminal outcome on the Ledger side, not a sale at price zero.
func (c *Client) MarkUnsold(ctx context.Context, lot *auction.Lot) error {
	return c.postLot(ctx, "/mark-unsold", lot)
}

func (c *Client) postLot(ctx context.Context, path string, lot *auction.Lot) error {
	body, err := json.Marshal(lot)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", auction.ErrLedgerUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("%w: %s http %d", auction.ErrLedgerUnavailable, path, res.StatusCode)
	}
	return nil
}
