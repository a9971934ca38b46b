// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakepool

import "errors"

// Abort reasons of pool transactions. Every failing operation wraps exactly one
// of these, so callers can branch on the class with errors.Is and resubmit with
// corrected arguments. A failed call leaves all state exactly as before.
var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrOverflow            = errors.New("arithmetic overflow")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
