package temporal

import (
	"math/big"
)

var (
	bigOne      = big.NewInt(1)
	bigNsPerDay = big.NewInt(nsPerDay)
	bigNsPerSec = big.NewInt(nsPerSecond)
	maxTimeSpan = new(big.Int).Sub(new(big.Int).Mul(new(big.Int).Lsh(bigOne, 53), bigNsPerSec), bigOne)
	minTimeSpan = new(big.Int).Neg(maxTimeSpan)
	bigMaxInt64 = big.NewInt(1<<63 - 1)
	bigMinInt64 = big.NewInt(-1 << 63)
)

const (
	nsPerSecond = 1_000_000_000
	nsPerDay    = 86_400 * nsPerSecond
)

func bigInt(v int64) *big.Int { return big.NewInt(v) }

func bigAdd(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }

func bigSub(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }

func bigMul(a *big.Int, b int64) *big.Int { return new(big.Int).Mul(a, big.NewInt(b)) }

// int64Of converts x, reporting whether it fits.
func int64Of(x *big.Int) (int64, bool) {
	if x.Cmp(bigMaxInt64) > 0 || x.Cmp(bigMinInt64) < 0 {
		return 0, false
	}
	return x.Int64(), true
}

// unsignedRounding is a rounding mode applied to the magnitude of a value.
type unsignedRounding int

const (
	roundZero unsignedRounding = iota
	roundInfinity
	roundHalfZero
	roundHalfInfinity
	roundHalfEven
)

func unsignedMode(m RoundingMode, negative bool) unsignedRounding {
	switch m {
	case RoundCeil:
		if negative {
			return roundZero
		}
		return roundInfinity
	case RoundFloor:
		if negative {
			return roundInfinity
		}
		return roundZero
	case RoundExpand:
		return roundInfinity
	case RoundTrunc:
		return roundZero
	case RoundHalfCeil:
		if negative {
			return roundHalfZero
		}
		return roundHalfInfinity
	case RoundHalfFloor:
		if negative {
			return roundHalfInfinity
		}
		return roundHalfZero
	case RoundHalfTrunc:
		return roundHalfZero
	case RoundHalfEven:
		return roundHalfEven
	default:
		return roundHalfInfinity
	}
}

// roundsUp reports whether a magnitude strictly between the lower candidate r1
// and the upper candidate r2 rounds to r2. half is the comparison of the
// distance from r1 with half the distance between the candidates, and
// lowerEven reports whether r1 is an even multiple of the increment.
func (u unsignedRounding) roundsUp(half int, lowerEven bool) bool {
	switch u {
	case roundZero:
		return false
	case roundInfinity:
		return true
	}
	if half != 0 {
		return half > 0
	}
	switch u {
	case roundHalfZero:
		return false
	case roundHalfInfinity:
		return true
	default:
		return !lowerEven
	}
}

// roundToIncrement rounds x to a multiple of increment, which must be
// positive. Directions are relative to zero, so trunc and floor differ for
// negative values.
func roundToIncrement(x, increment *big.Int, mode RoundingMode) *big.Int {
	q, r := new(big.Int).QuoRem(x, increment, new(big.Int))
	if r.Sign() == 0 {
		return new(big.Int).Set(x)
	}
	negative := x.Sign() < 0
	q.Abs(q)
	r.Abs(r)
	half := new(big.Int).Lsh(r, 1).Cmp(increment)
	if unsignedMode(mode, negative).roundsUp(half, q.Bit(0) == 0) {
		q.Add(q, bigOne)
	}
	if negative {
		q.Neg(q)
	}
	return q.Mul(q, increment)
}

// roundToIncrementAsIfPositive rounds x to a multiple of increment treating
// every value as positive: trunc behaves like floor and ties of halfExpand
// go toward positive infinity. Instants and wall-clock times round this way.
func roundToIncrementAsIfPositive(x, increment *big.Int, mode RoundingMode) *big.Int {
	q, r := new(big.Int).DivMod(x, increment, new(big.Int))
	if r.Sign() == 0 {
		return new(big.Int).Set(x)
	}
	half := new(big.Int).Lsh(r, 1).Cmp(increment)
	if unsignedMode(mode, false).roundsUp(half, q.Bit(0) == 0) {
		q.Add(q, bigOne)
	}
	return q.Mul(q, increment)
}

// roundTimeSpan rounds a nanosecond time span and checks the result is still
// a valid duration time portion.
func roundTimeSpan(span *big.Int, increment *big.Int, mode RoundingMode) (*big.Int, error) {
	out := roundToIncrement(span, increment, mode)
	if err := checkTimeSpan(out); err != nil {
		return nil, err
	}
	return out, nil
}

// totalOf divides a nanosecond span by a unit length exactly and converts the
// quotient to the nearest float64.
func totalOf(span *big.Int, unitNs int64) float64 {
	f, _ := new(big.Rat).SetFrac(span, big.NewInt(unitNs)).Float64()
	return f
}

// truncDays returns the whole 24-hour days in a span, rounded toward zero.
func truncDays(span *big.Int) int64 {
	return new(big.Int).Quo(span, bigNsPerDay).Int64()
}
