package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/tourneydesk/auction-backend/internal/ledger"
)

type fakeRoles struct {
	calls int
	info  ledger.RoleInfo
	err   error
}

func (f *fakeRoles) UserRole(ctx context.Context, credential string) (ledger.RoleInfo, error) {
	f.calls++
	return f.info, f.err
}

func TestResolve_CachesPerConnection(t *testing.T) {
	src := &fakeRoles{info: ledger.RoleInfo{
		Roles:    []string{"auctioneer"},
		TeamRole: "captain",
		TeamID:   "team-1",
		CanBid:   true,
	}}
	o := NewOracle(src, zap.NewNop())

	first := o.Resolve(context.Background(), "c1", "tok", "room-a")
	second := o.Resolve(context.Background(), "c1", "tok", "room-a")

	assert.Equal(t, 1, src.calls, "role endpoint hit once per connection")
	assert.True(t, first.Auth.CanBid)
	assert.True(t, first.Auth.CanManage)
	assert.Equal(t, first.Auth, second.Auth)
}

func TestResolve_SeparateConnectionsResolveSeparately(t *testing.T) {
	src := &fakeRoles{info: ledger.RoleInfo{CanBid: true, TeamID: "team-1"}}
	o := NewOracle(src, zap.NewNop())

	o.Resolve(context.Background(), "c1", "tok", "room-a")
	o.Resolve(context.Background(), "c2", "tok", "room-a")
	assert.Equal(t, 2, src.calls)
}

func TestResolve_NoCredentialIsReadOnlyViewer(t *testing.T) {
	src := &fakeRoles{}
	o := NewOracle(src, zap.NewNop())

	cc := o.Resolve(context.Background(), "c1", "", "room-a")
	assert.Equal(t, 0, src.calls, "no ledger call without a credential")
	assert.False(t, cc.Auth.CanBid)
	assert.False(t, cc.Auth.CanManage)
}

func TestResolve_FailedLookupDegradesToReadOnly(t *testing.T) {
	src := &fakeRoles{err: errors.New("ledger down")}
	o := NewOracle(src, zap.NewNop())

	cc := o.Resolve(context.Background(), "c1", "tok", "room-a")
	assert.False(t, cc.Auth.CanBid)
	assert.False(t, cc.Auth.CanManage)

	// The failure is cached too: no retry storm within a connection.
	o.Resolve(context.Background(), "c1", "tok", "room-a")
	assert.Equal(t, 1, src.calls)
}

func TestCanManage(t *testing.T) {
	assert.True(t, canManage([]string{"admin"}))
	assert.True(t, canManage([]string{"viewer", "auctioneer"}))
	assert.False(t, canManage([]string{"viewer"}))
	assert.False(t, canManage(nil))
}

func TestForget(t *testing.T) {
	src := &fakeRoles{info: ledger.RoleInfo{CanBid: true}}
	o := NewOracle(src, zap.NewNop())

	o.Resolve(context.Background(), "c1", "tok", "room-a")
	o.Forget("c1")
	o.Resolve(context.Background(), "c1", "tok", "room-a")
	assert.Equal(t, 2, src.calls)
}
