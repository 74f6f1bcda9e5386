package num

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Uint is a wrapper over a 256 bit unsigned integer, used for every token
// amount in the system. Balances and supplies never go negative, overflow
// and underflow are surfaced explicitly.
type Uint struct {
	u uint256.Int
}

// NewUint builds a Uint from a uint64.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// UintZero returns a new zero value.
func UintZero() *Uint {
	return NewUint(0)
}

// UintFromBig builds a Uint from a big.Int, the second return value
// is true if an overflow occurred.
func UintFromBig(b *big.Int) (*Uint, bool) {
	u, overflow := uint256.FromBig(b)
	if overflow {
		return NewUint(0), true
	}
	return &Uint{*u}, false
}

// UintFromDecimal truncates the decimal part and converts what is left,
// the second return value is true if an overflow occurred.
func UintFromDecimal(d Decimal) (*Uint, bool) {
	return UintFromBig(d.BigInt())
}

// UintFromString parses a base-10 string, the second return value is
// true if parsing failed or the value overflowed.
func UintFromString(str string) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, 10)
	if !ok {
		return NewUint(0), true
	}
	return UintFromBig(b)
}

// Min returns the smallest of the 2 numbers.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// Max returns the largest of the 2 numbers.
func Max(a, b *Uint) *Uint {
	if a.GT(b) {
		return a
	}
	return b
}

// Sum is a convenience for x + y + z + ...
func Sum(vals ...*Uint) *Uint {
	return NewUint(0).AddSum(vals...)
}

func (z *Uint) ToDecimal() Decimal {
	return DecimalFromUint(z)
}

func (z *Uint) Set(oth *Uint) *Uint {
	z.u.Set(&oth.u)
	return z
}

func (z Uint) Uint64() uint64 {
	return z.u.Uint64()
}

func (z Uint) BigInt() *big.Int {
	return z.u.ToBig()
}

// Add sets z to x + y and returns z.
func (z *Uint) Add(x, y *Uint) *Uint {
	z.u.Add(&x.u, &y.u)
	return z
}

// AddSum adds all the given values to z in place.
func (z *Uint) AddSum(vals ...*Uint) *Uint {
	for _, x := range vals {
		z.u.Add(&z.u, &x.u)
	}
	return z
}

// Sub sets z to x - y and returns z.
func (z *Uint) Sub(x, y *Uint) *Uint {
	z.u.Sub(&x.u, &y.u)
	return z
}

// SubOverflow sets z to x - y, the second return value is true when
// the subtraction underflowed.
func (z *Uint) SubOverflow(x, y *Uint) (*Uint, bool) {
	_, ok := z.u.SubOverflow(&x.u, &y.u)
	return z, ok
}

// Mul sets z to x * y and returns z.
func (z *Uint) Mul(x, y *Uint) *Uint {
	z.u.Mul(&x.u, &y.u)
	return z
}

// Div sets z to x / y (integer division) and returns z.
func (z *Uint) Div(x, y *Uint) *Uint {
	z.u.Div(&x.u, &y.u)
	return z
}

func (z Uint) LT(oth *Uint) bool {
	return z.u.Lt(&oth.u)
}

func (z Uint) LTE(oth *Uint) bool {
	return z.u.Lt(&oth.u) || z.u.Eq(&oth.u)
}

func (z Uint) EQ(oth *Uint) bool {
	return z.u.Eq(&oth.u)
}

func (z Uint) NEQ(oth *Uint) bool {
	return !z.u.Eq(&oth.u)
}

func (z Uint) GT(oth *Uint) bool {
	return z.u.Gt(&oth.u)
}

func (z Uint) GTE(oth *Uint) bool {
	return z.u.Gt(&oth.u) || z.u.Eq(&oth.u)
}

func (z Uint) IsZero() bool {
	return z.u.IsZero()
}

// Clone returns a copy of z, the callee is never modified.
func (z Uint) Clone() *Uint {
	return &Uint{z.u}
}

func (z Uint) String() string {
	return z.u.ToBig().String()
}

// Format implements fmt.Formatter.
func (z Uint) Format(s fmt.State, ch rune) {
	z.u.Format(s, ch)
}

// Bytes returns the value as a 32 byte big endian array, used when
// deriving identity hashes.
func (z Uint) Bytes() [32]byte {
	return z.u.Bytes32()
}
