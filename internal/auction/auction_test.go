package auction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLot_IncrementFallback(t *testing.T) {
	lot := NewLot("slug", "l1", 500, 0, "A", "", "", Stats{})
	assert.Equal(t, DefaultIncrement, lot.Increment)

	lot = NewLot("slug", "l2", 500, 250, "B", "", "", Stats{})
	assert.Equal(t, 250, lot.Increment)

	lot = NewLot("slug", "l3", -5, 100, "C", "", "", Stats{})
	assert.Equal(t, 0, lot.BasePrice)
}

func TestLot_FrozenAfterClose(t *testing.T) {
	lot := NewLot("slug", "l1", 100, 10, "A", "", "", Stats{})
	lot.Record(Bid{TeamID: "x", Amount: 100, LotID: "l1"})
	lot.Record(Bid{TeamID: "y", Amount: 110, LotID: "l1"})

	selling := lot.Close()
	require.NotNil(t, selling)
	assert.Equal(t, "y", selling.TeamID)
	assert.True(t, lot.Sold)

	// No further bids append once sold, and the selling bid never changes.
	lot.Record(Bid{TeamID: "z", Amount: 500, LotID: "l1"})
	assert.Len(t, lot.BidLog, 2)
	assert.Equal(t, "y", lot.CurrentBid.TeamID)

	again := lot.Close()
	assert.Same(t, selling, again)
}

func TestLot_CloseWithNoBids(t *testing.T) {
	lot := NewLot("slug", "l1", 100, 10, "A", "", "", Stats{})
	selling := lot.Close()
	assert.Nil(t, selling)
	assert.True(t, lot.Sold)
	assert.Nil(t, lot.SellingBid)
}

func TestLot_ResetRestoresPreBiddingCondition(t *testing.T) {
	lot := NewLot("slug", "l1", 100, 10, "A", "", "", Stats{})
	lot.Record(Bid{TeamID: "x", Amount: 100, LotID: "l1"})
	lot.Close()

	lot.Reset()
	assert.Nil(t, lot.CurrentBid)
	assert.Empty(t, lot.BidLog)
	assert.False(t, lot.Sold)
	assert.Nil(t, lot.SellingBid)

	// Metadata survives the reset.
	assert.Equal(t, "A", lot.DisplayName)
	assert.Equal(t, 100, lot.BasePrice)
}

func TestLot_CloneIsIndependent(t *testing.T) {
	lot := NewLot("slug", "l1", 100, 10, "A", "", "", Stats{})
	lot.Record(Bid{TeamID: "x", Amount: 100, LotID: "l1"})

	c := lot.Clone()
	lot.Record(Bid{TeamID: "y", Amount: 110, LotID: "l1"})

	assert.Len(t, c.BidLog, 1)
	assert.Equal(t, "x", c.CurrentBid.TeamID)
	assert.Equal(t, "y", lot.CurrentBid.TeamID)
}
