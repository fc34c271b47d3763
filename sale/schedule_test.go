package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/tranche/types"
)

var launch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return launch.Add(time.Duration(n) * 24 * time.Hour) }

func TestUnlockedCurve(t *testing.T) {
	t.Parallel()

	total := types.NewAmount(1_000_000)

	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"before launch", launch.Add(-time.Hour), 100_000},
		{"at launch", launch, 100_000},
		{"one second before cliff end", day(30).Add(-time.Second), 100_000},
		{"cliff boundary", day(30), 100_000},
		{"six months into linear", day(30 + 6*30), 550_000},
		{"eleven months into linear", day(30 + 11*30), 925_000},
		{"fully vested", day(13 * 30), 1_000_000},
		{"long after", day(1000), 1_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Unlocked(total, launch, tt.now)
			require.Equal(t, types.NewAmount(tt.want).String(), got.String())
		})
	}
}

func TestUnlockedTruncatesTowardZero(t *testing.T) {
	t.Parallel()

	// 1000 tokens, one second into linear vesting:
	// 90*1000*1 / (100*31104000) truncates to 0, so only the cliff
	// portion is unlocked.
	total := types.NewAmount(1000)
	got := Unlocked(total, launch, day(30).Add(time.Second))
	require.Equal(t, "100", got.String())

	// Sub-second progress never counts.
	got = Unlocked(total, launch, day(30).Add(500*time.Millisecond))
	require.Equal(t, "100", got.String())
}

func TestUnlockedMonotonic(t *testing.T) {
	t.Parallel()

	total := types.MustAmount("123456789012345678901")
	prev := types.Zero()

	for _, offset := range []time.Duration{
		-24 * time.Hour,
		0,
		CliffDuration - time.Second,
		CliffDuration,
		CliffDuration + time.Second,
		CliffDuration + LinearDuration/3,
		CliffDuration + LinearDuration/2,
		CliffDuration + LinearDuration - time.Second,
		CliffDuration + LinearDuration,
		CliffDuration + 2*LinearDuration,
	} {
		got := Unlocked(total, launch, launch.Add(offset))
		require.False(t, got.LessThan(prev), "unlocked regressed at offset %s", offset)
		prev = got
	}

	require.Equal(t, total.String(), prev.String())
}

func TestUnlockedZeroPurchase(t *testing.T) {
	t.Parallel()

	require.True(t, Unlocked(types.Zero(), launch, day(1000)).IsZero())
}

func TestClaimable(t *testing.T) {
	t.Parallel()

	params := LaunchParams{LaunchAt: launch, ClaimEnableAt: launch, Scheduled: true}

	rec := &PurchaseRecord{
		Account:     "buyer",
		TotalTokens: types.NewAmount(1_000_000),
	}

	// Cliff portion pending.
	require.Equal(t, "100000", Claimable(rec, params, day(1)).String())

	// Claim the cliff, then nothing further is pending until time moves.
	rec.ClaimedTokens = types.NewAmount(100_000)
	require.True(t, Claimable(rec, params, day(1)).IsZero())

	// Six months later the linear portion accrued on top.
	require.Equal(t, "450000", Claimable(rec, params, day(30+6*30)).String())

	// Over-claimed records floor at zero rather than going negative.
	rec.ClaimedTokens = types.NewAmount(2_000_000)
	require.True(t, Claimable(rec, params, day(13*30)).IsZero())

	require.True(t, Claimable(nil, params, day(1)).IsZero())
}

func TestLaunchParamsClaimsOpen(t *testing.T) {
	t.Parallel()

	p := LaunchParams{LaunchAt: launch, ClaimEnableAt: launch.Add(-time.Hour), Scheduled: true}

	require.False(t, p.ClaimsOpen(launch.Add(-2*time.Hour)))
	require.True(t, p.ClaimsOpen(launch.Add(-time.Hour))) // boundary is inclusive
	require.True(t, p.ClaimsOpen(launch))

	p.Scheduled = false
	require.False(t, p.ClaimsOpen(launch))
}

func TestTermsValidateAndCost(t *testing.T) {
	t.Parallel()

	valid := Terms{
		TotalLots:    100,
		TokensPerLot: types.NewAmount(10_000),
		LotPrice:     types.NewAmount(250),
		TokenCap:     types.NewAmount(1_000_000),
	}
	require.NoError(t, valid.Validate())

	require.Equal(t, "750", valid.Cost(3).String())
	require.Equal(t, "30000", valid.Tokens(3).String())

	for name, broken := range map[string]Terms{
		"zero lots":  {TokensPerLot: types.NewAmount(1), LotPrice: types.NewAmount(1), TokenCap: types.NewAmount(1)},
		"zero price": {TotalLots: 1, TokensPerLot: types.NewAmount(1), TokenCap: types.NewAmount(1)},
		"zero cap":   {TotalLots: 1, TokensPerLot: types.NewAmount(1), LotPrice: types.NewAmount(1)},
	} {
		t.Run(name, func(t *testing.T) {
			require.Error(t, broken.Validate())
		})
	}
}
