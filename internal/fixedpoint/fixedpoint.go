// Package fixedpoint implements the gas-oracle exchange-rate arithmetic from
// the error handling design's numeric semantics section: a u128 fixed-point
// numerator over 10^10, where 10^10 denotes parity.
//
// Grounded on the Uint128{High,Low} representation in
// smartcontract/sdk/go/state.go (the teacher's on-chain-compatible 128-bit
// integer), generalized here to use math/big for the arithmetic itself since
// the orchestrator (unlike the on-chain program) is not bound to Rust's u128
// layout for computation — only for serialization, handled in
// internal/protocol.
package fixedpoint

import (
	"errors"
	"math/big"
)

// Scale is the canonical fixed-point scale: a token_exchange_rate of Scale
// denotes parity between local and remote gas token values.
var Scale = big.NewInt(10_000_000_000)

// ErrOverflow is returned when a computation would not fit in 128 bits.
var ErrOverflow = errors.New("fixedpoint: result overflows u128")

// ErrNonPositiveRate is returned when a caller supplies a zero or negative
// exchange rate, which violates the gas oracle config invariant
// token_exchange_rate > 0.
var ErrNonPositiveRate = errors.New("fixedpoint: token_exchange_rate must be > 0")

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Uint128 is a 128-bit unsigned integer split into high/low 64-bit halves,
// matching the on-chain account layout (see internal/protocol state decode).
type Uint128 struct {
	High uint64
	Low  uint64
}

// ToBig converts a Uint128 into a math/big value for arithmetic.
func (u Uint128) ToBig() *big.Int {
	v := new(big.Int).Lsh(new(big.Int).SetUint64(u.High), 64)
	v.Or(v, new(big.Int).SetUint64(u.Low))
	return v
}

// FromBig converts a non-negative big.Int that fits in 128 bits into a
// Uint128. It returns ErrOverflow if v is negative or >= 2^128.
func FromBig(v *big.Int) (Uint128, error) {
	if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return Uint128{}, ErrOverflow
	}
	low := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	high := new(big.Int).Rsh(v, 64)
	return Uint128{High: high.Uint64(), Low: low.Uint64()}, nil
}

// ValidateExchangeRate checks the gas oracle config invariant
// token_exchange_rate > 0.
func ValidateExchangeRate(rate Uint128) error {
	if rate.ToBig().Sign() <= 0 {
		return ErrNonPositiveRate
	}
	return nil
}

// LocalGasCost computes gas_cost_local = gas_cost_remote * exchange_rate /
// Scale, rounding toward zero, per the error handling design's numeric
// semantics. It returns ErrOverflow if the product or result would not fit
// in 128 bits, and ErrNonPositiveRate if exchangeRate is not positive.
func LocalGasCost(gasCostRemote, exchangeRate Uint128) (Uint128, error) {
	if err := ValidateExchangeRate(exchangeRate); err != nil {
		return Uint128{}, err
	}

	remote := gasCostRemote.ToBig()
	rate := exchangeRate.ToBig()

	product := new(big.Int).Mul(remote, rate)
	// The intermediate product can exceed 128 bits even when the final
	// result does not; only the final quotient is bound-checked.
	quotient := new(big.Int).Quo(product, Scale) // Quo truncates toward zero.

	return FromBig(quotient)
}
