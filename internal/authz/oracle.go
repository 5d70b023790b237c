// Package authz resolves what a connected viewer is allowed to do. The
// Ledger service owns the answer; this package fetches it once per
// connection and hands the result around as an explicit ConnectionContext
// instead of a shared lookup table.
package authz

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/ledger"
)

// Roles that may run an auction: open lots, close them, cancel bidding.
var managingRoles = []string{"admin", "auctioneer"}

// Snapshot is a viewer's resolved permissions. The zero value is the
// read-only unauthenticated viewer, which is a legitimate state and never
// an error.
type Snapshot struct {
	Roles     []string
	TeamRole  string
	TeamID    string
	CanBid    bool
	CanManage bool
}

// ConnectionContext is built once at connect time and carried on every
// command the connection issues. It is never shared between connections,
// and a role change elsewhere only affects connections made after it.
type ConnectionContext struct {
	ConnID string
	Slug   string
	Auth   Snapshot
}

// RoleSource is the slice of the Ledger client the oracle needs.
type RoleSource interface {
	UserRole(ctx context.Context, credential string) (ledger.RoleInfo, error)
}

type Oracle struct {
	roles RoleSource
	log   *zap.Logger

	mu    sync.Mutex
	cache map[string]Snapshot
}

func NewOracle(roles RoleSource, log *zap.Logger) *Oracle {
	return &Oracle{
		roles: roles,
		log:   log,
		cache: make(map[string]Snapshot),
	}
}

// Resolve returns the connection's permissions, calling the Ledger's role
// endpoint on the first request for a connection and the cache afterward.
// An absent or rejected credential degrades to the all-false snapshot.
func (o *Oracle) Resolve(ctx context.Context, connID, credential, slug string) ConnectionContext {
	o.mu.Lock()
	snap, ok := o.cache[connID]
	o.mu.Unlock()
	if ok {
		return ConnectionContext{ConnID: connID, Slug: slug, Auth: snap}
	}

	if credential != "" {
		info, err := o.roles.UserRole(ctx, credential)
		if err != nil {
			o.log.Warn("role lookup failed, admitting as read-only viewer",
				zap.String("conn_id", connID), zap.String("slug", slug), zap.Error(err))
		} else {
			snap = Snapshot{
				Roles:     info.Roles,
				TeamRole:  info.TeamRole,
				TeamID:    info.TeamID,
				CanBid:    info.CanBid,
				CanManage: canManage(info.Roles),
			}
		}
	}

	o.mu.Lock()
	o.cache[connID] = snap
	o.mu.Unlock()
	return ConnectionContext{ConnID: connID, Slug: slug, Auth: snap}
}

// Forget drops a connection's cached snapshot on disconnect.
func (o *Oracle) Forget(connID string) {
	o.mu.Lock()
	delete(o.cache, connID)
	o.mu.Unlock()
}

func canManage(roles []string) bool {
	for _, r := range managingRoles {
		if slices.Contains(roles, r) {
			return true
		}
	}
	return false
}
