// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sink []byte

func TestPrettyUint64(t *testing.T) {
	assert.Equal(t, "12,345,678", FormatLogfmtUint64(12345678))
	assert.Equal(t, "99999", FormatLogfmtUint64(99999))
}

func BenchmarkPrettyInt64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendInt64(buf, rand.Int64()) //#nosec G404
	}
}

func BenchmarkPrettyUint64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendUint64(buf, rand.Uint64(), false) //#nosec G404
	}
}
