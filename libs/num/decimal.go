package num

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal is used for everything that is not a token amount: prices,
// yields, percentages and ratios all carry fractional precision.
type Decimal = decimal.Decimal

var (
	dzero = decimal.Zero
	d1    = decimal.NewFromInt(1)
)

func DecimalZero() Decimal {
	return dzero
}

func DecimalOne() Decimal {
	return d1
}

func MustDecimalFromString(s string) Decimal {
	d, err := DecimalFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func DecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

func DecimalFromInt64(i int64) Decimal {
	return decimal.NewFromInt(i)
}

func DecimalFromFloat(v float64) Decimal {
	return decimal.NewFromFloat(v)
}

func DecimalFromUint(u *Uint) Decimal {
	return decimal.NewFromBigInt(u.BigInt(), 0)
}

func DecimalFromBigInt(value *big.Int, exp int32) Decimal {
	return decimal.NewFromBigInt(value, exp)
}

func MaxD(a, b Decimal) Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func MinD(a, b Decimal) Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// UintFromDecimalFloor rounds towards zero. The boolean is true on overflow
// or when the decimal was negative.
func UintFromDecimalFloor(d Decimal) (*Uint, bool) {
	if d.IsNegative() {
		return UintZero(), true
	}
	return UintFromBig(d.Floor().BigInt())
}

// UintFromDecimalCeil rounds away from zero. The boolean is true on overflow
// or when the decimal was negative.
func UintFromDecimalCeil(d Decimal) (*Uint, bool) {
	if d.IsNegative() {
		return UintZero(), true
	}
	return UintFromBig(d.Ceil().BigInt())
}

// ScaleToDecimals divides the raw integer amount by 10^decimals.
func ScaleToDecimals(a *Uint, decimals uint8) Decimal {
	return DecimalFromUint(a).Div(decimalPow10(decimals))
}

// ScaleFromDecimals multiplies a unit-denominated decimal back into a raw
// integer representation with the given precision, flooring the result.
func ScaleFromDecimals(d Decimal, decimals uint8) (*Uint, bool) {
	return UintFromDecimalFloor(d.Mul(decimalPow10(decimals)))
}

func decimalPow10(decimals uint8) Decimal {
	return DecimalFromInt64(10).Pow(DecimalFromInt64(int64(decimals)))
}
