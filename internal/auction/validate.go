package auction

// Validate decides whether bid may be recorded against lot, given the
// Ledger's current view of the bidding team. Pure: no I/O, no clock, so
// it is testable with synthetic triples. Rules apply in order and the
// first failure wins:
//
//  1. the lot must still be open
//  2. amount must meet the base price
//  3. the team must have a roster seat left
//  4. amount must fit the team's purse
//  5. a team outbidding itself must strictly raise (no increment floor);
//     a competing team must meet current bid + increment (or the base
//     price when there is no bid yet)
func Validate(lot *Lot, team TeamSnapshot, bid Bid) error {
	if lot.Sold {
		return ErrLotClosed
	}
	if bid.Amount < lot.BasePrice {
		return ErrBelowBasePrice
	}
	if team.RosterSize >= team.MaxRosterSize {
		return ErrTeamFull
	}
	if bid.Amount > team.Purse {
		return ErrExceedsPurse
	}

	cur := lot.CurrentBid
	if cur != nil && cur.TeamID == bid.TeamID {
		if bid.Amount > cur.Amount {
			return nil
		}
		return ErrMustIncreaseOwnBid
	}

	floor := lot.BasePrice
	if cur != nil {
		floor = cur.Amount + lot.Increment
	}
	if bid.Amount < floor {
		return ErrBelowMinimumIncrement
	}
	return nil
}
