// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openstake/stakepool/stakepool"
)

func TestStorage(t *testing.T) {
	st := New()
	addr := stakepool.BytesToAddress([]byte("pool"))
	key := stakepool.Blake2b([]byte("k1"))

	got, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, got.IsZero())

	value := stakepool.Blake2b([]byte("v1"))
	st.SetStorage(addr, key, value)

	got, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	// zero value deletes the slot
	st.SetStorage(addr, key, stakepool.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Len(t, raw, 0)
}

func TestCheckpointRevert(t *testing.T) {
	st := New()
	addr := stakepool.BytesToAddress([]byte("pool"))
	key := stakepool.Blake2b([]byte("slot"))
	v1 := stakepool.Blake2b([]byte("v1"))
	v2 := stakepool.Blake2b([]byte("v2"))

	st.SetStorage(addr, key, v1)

	cp := st.NewCheckpoint()
	st.SetStorage(addr, key, v2)
	st.SetStorage(addr, stakepool.Blake2b([]byte("other")), v2)

	st.RevertTo(cp)

	got, _ := st.GetStorage(addr, key)
	assert.Equal(t, v1, got)
	other, _ := st.GetStorage(addr, stakepool.Blake2b([]byte("other")))
	assert.True(t, other.IsZero())
}

func TestNestedCheckpoints(t *testing.T) {
	st := New()
	addr := stakepool.BytesToAddress([]byte("pool"))
	key := stakepool.Blake2b([]byte("slot"))

	outer := st.NewCheckpoint()
	st.SetStorage(addr, key, stakepool.Blake2b([]byte("a")))

	inner := st.NewCheckpoint()
	st.SetStorage(addr, key, stakepool.Blake2b([]byte("b")))
	st.RevertTo(inner)

	got, _ := st.GetStorage(addr, key)
	assert.Equal(t, stakepool.Blake2b([]byte("a")), got)

	st.RevertTo(outer)
	got, _ = st.GetStorage(addr, key)
	assert.True(t, got.IsZero())
}

func TestRawStorageRoundtrip(t *testing.T) {
	st := New()
	addr := stakepool.BytesToAddress([]byte("pool"))
	key := stakepool.Blake2b([]byte("raw"))

	assert.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}))

	var decoded []byte
	assert.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		decoded = raw
		return nil
	}))
	assert.Equal(t, []byte{1, 2, 3}, decoded)
}
