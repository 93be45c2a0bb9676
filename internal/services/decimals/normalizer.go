// Package decimals converts token amounts between native precision and the
// shared 18-decimal reference scale every price is expressed in.
package decimals

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

const (
	// ReferenceScale is the decimal precision of every normalized amount.
	ReferenceScale = 18
	// MaxDecimals bounds supported token precision.
	MaxDecimals = 36
)

var (
	ErrDecimalsOutOfRange = errors.New("token decimals out of range")
	ErrAmountOutOfRange   = errors.New("amount exceeds supply ceiling")
	ErrNegativeAmount     = errors.New("negative amount")
	ErrOverflow           = errors.New("arithmetic overflow")
)

var (
	// MaxAmount is the supply ceiling of supported tokens, 2^128 - 1.
	MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	u256MaxAmount = uint256.MustFromBig(MaxAmount)
	pow10         [MaxDecimals + 1]*uint256.Int
)

func init() {
	pow10[0] = uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := 1; i <= MaxDecimals; i++ {
		pow10[i] = new(uint256.Int).Mul(pow10[i-1], ten)
	}
}

// One returns one whole reference unit, 10^18.
func One() *big.Int {
	return pow10[ReferenceScale].ToBig()
}

// Pow10 returns 10^n for n within the supported decimals range.
func Pow10(n uint8) (*big.Int, error) {
	if n > MaxDecimals {
		return nil, ErrDecimalsOutOfRange
	}
	return pow10[n].ToBig(), nil
}

// ToReference rescales a native amount to the reference scale.
// Precision above 18 decimals is truncated toward zero.
func ToReference(amount *big.Int, tokenDecimals uint8) (*big.Int, error) {
	x, err := toU256(amount)
	if err != nil {
		return nil, err
	}
	if x.Gt(u256MaxAmount) {
		return nil, ErrAmountOutOfRange
	}
	out, err := rescale(x, tokenDecimals, ReferenceScale)
	if err != nil {
		return nil, err
	}
	return out.ToBig(), nil
}

// FromReference rescales a reference amount back to a token's native precision.
func FromReference(amount *big.Int, tokenDecimals uint8) (*big.Int, error) {
	x, err := toU256(amount)
	if err != nil {
		return nil, err
	}
	out, err := rescale(x, ReferenceScale, tokenDecimals)
	if err != nil {
		return nil, err
	}
	return out.ToBig(), nil
}

func rescale(x *uint256.Int, from, to uint8) (*uint256.Int, error) {
	if from > MaxDecimals || to > MaxDecimals {
		return nil, ErrDecimalsOutOfRange
	}
	switch {
	case from == to:
		return x.Clone(), nil
	case from < to:
		out, overflow := new(uint256.Int).MulOverflow(x, pow10[to-from])
		if overflow {
			return nil, ErrOverflow
		}
		return out, nil
	default:
		return new(uint256.Int).Div(x, pow10[from-to]), nil
	}
}

func toU256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil {
		return new(uint256.Int), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	x, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrOverflow
	}
	return x, nil
}
