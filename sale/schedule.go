package sale

import (
	"math/big"
	"time"

	"github.com/xraph/tranche/types"
)

// Unlock schedule: 10% of a position unlocks at launch (the cliff), the
// remaining 90% vests linearly over the following twelve 30-day months.
// A "month" is exactly 30 days throughout.
const (
	// CliffDuration is the period after launch during which only the
	// cliff percentage is unlocked.
	CliffDuration = 30 * 24 * time.Hour

	// LinearDuration is the linear vesting period that starts when the
	// cliff ends.
	LinearDuration = 12 * 30 * 24 * time.Hour

	cliffPercent  = 10
	linearPercent = 100 - cliffPercent
)

// Unlocked returns the portion of total unlocked at now for a position
// launched at launchAt. It is monotonically non-decreasing in now and
// continuous at the cliff boundary: the instant the linear clock starts,
// both branches evaluate to exactly the cliff percentage.
//
// Integer arithmetic truncates toward zero, matching the exact formula
// cliff% * T + (linear% * T * vestedTime) / (100 * LinearDuration).
func Unlocked(total types.Amount, launchAt, now time.Time) types.Amount {
	if total.IsZero() {
		return types.Zero()
	}

	cliffEnd := launchAt.Add(CliffDuration)
	if now.Before(cliffEnd) {
		return percentOf(total, cliffPercent)
	}

	vested := now.Sub(cliffEnd)
	if vested >= LinearDuration {
		return total
	}

	// linear% * T * vestedSeconds / (100 * linearSeconds), truncated.
	num := new(big.Int).Mul(total.BigInt(), big.NewInt(linearPercent))
	num.Mul(num, big.NewInt(int64(vested/time.Second)))
	den := big.NewInt(100 * int64(LinearDuration/time.Second))
	num.Quo(num, den)

	return percentOf(total, cliffPercent).Add(types.AmountFromBig(num))
}

// Claimable returns the amount rec can claim at now under params,
// i.e. unlocked-so-far minus already-claimed, floored at zero. It does
// not check whether claims are enabled; that gate belongs to the engine.
func Claimable(rec *PurchaseRecord, params LaunchParams, now time.Time) types.Amount {
	if rec == nil || rec.TotalTokens.IsZero() {
		return types.Zero()
	}

	unlocked := Unlocked(rec.TotalTokens, params.LaunchAt, now)
	claimable := unlocked.Sub(rec.ClaimedTokens)
	if claimable.IsNegative() {
		return types.Zero()
	}
	return claimable
}

func percentOf(a types.Amount, pct int64) types.Amount {
	v := new(big.Int).Mul(a.BigInt(), big.NewInt(pct))
	v.Quo(v, big.NewInt(100))
	return types.AmountFromBig(v)
}
