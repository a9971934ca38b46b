// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"time"

	"github.com/openstake/stakepool/stakepool"
)

// StakeEvent is emitted after a successful stake.
type StakeEvent struct {
	Staker    stakepool.Address
	Amount    *big.Int
	Validator stakepool.Address
}

// UnstakeEvent is emitted after a successful unstake. UnstakeAmount is the
// base-token amount released, which differs from the burned derivative amount
// whenever the exchange rate deviates from 1:1.
type UnstakeEvent struct {
	Staker        stakepool.Address
	UnstakeAmount *big.Int
	Validator     stakepool.Address
}

// ValidatorUpdateEvent is emitted when the admin replaces the delegation target.
type ValidatorUpdateEvent struct {
	OldValidator stakepool.Address
	OldOperator  []byte
	NewValidator stakepool.Address
	NewOperator  []byte
}

// DistributionEvent is emitted once per reward distribution.
type DistributionEvent struct {
	Total     *big.Int
	MEV       *big.Int
	Protocol  *big.Int
	LP        *big.Int
	Timestamp uint64
}

// LPClaimEvent is emitted when a staker claims accrued LP rewards.
type LPClaimEvent struct {
	Staker stakepool.Address
	Amount *big.Int
}

// EventSink receives pool events. Event emission itself is the host's
// concern, the pool only hands the records over.
type EventSink interface {
	Emit(event any)
}

type nopSink struct{}

func (nopSink) Emit(any) {}

// NopSink discards all events.
func NopSink() EventSink {
	return nopSink{}
}

// MemorySink collects events in order, for tests and solo mode.
type MemorySink struct {
	Events []any
}

func (s *MemorySink) Emit(event any) {
	s.Events = append(s.Events, event)
}

// Clock supplies the current time, in unix seconds. Operations never read the
// wall clock directly so the host (or a test) controls time.
type Clock interface {
	Now() uint64
}

type systemClock struct{}

func (systemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// SystemClock reads the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// ManualClock is a settable clock for tests and solo mode.
type ManualClock struct {
	T uint64
}

func (c *ManualClock) Now() uint64 {
	return c.T
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d uint64) {
	c.T += d
}
