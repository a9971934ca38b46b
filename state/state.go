// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/openstake/stakepool/stakepool"
)

type storageKey struct {
	addr stakepool.Address
	key  stakepool.Bytes32
}

type journalEntry struct {
	key     storageKey
	prev    []byte
	existed bool
}

// State is the account-storage surface the host ledger provides to the pool.
// All writes are journaled, so a whole operation can be reverted to a
// checkpoint when any of its steps fails.
type State struct {
	storage map[storageKey][]byte
	journal []journalEntry
}

// New creates an empty state.
func New() *State {
	return &State{
		storage: make(map[storageKey][]byte),
	}
}

func (s *State) getRaw(k storageKey) []byte {
	return s.storage[k]
}

func (s *State) setRaw(k storageKey, raw []byte) {
	prev, existed := s.storage[k]
	s.journal = append(s.journal, journalEntry{key: k, prev: prev, existed: existed})
	if len(raw) == 0 {
		delete(s.storage, k)
		return
	}
	s.storage[k] = raw
}

// GetStorage returns storage value for the given key.
func (s *State) GetStorage(addr stakepool.Address, key stakepool.Bytes32) (stakepool.Bytes32, error) {
	return stakepool.BytesToBytes32(s.getRaw(storageKey{addr, key})), nil
}

// SetStorage sets storage value for the given key.
func (s *State) SetStorage(addr stakepool.Address, key, value stakepool.Bytes32) {
	if value.IsZero() {
		s.setRaw(storageKey{addr, key}, nil)
		return
	}
	s.setRaw(storageKey{addr, key}, value.Bytes())
}

// GetRawStorage returns storage value in raw form.
func (s *State) GetRawStorage(addr stakepool.Address, key stakepool.Bytes32) ([]byte, error) {
	return s.getRaw(storageKey{addr, key}), nil
}

// SetRawStorage sets storage value in raw form.
func (s *State) SetRawStorage(addr stakepool.Address, key stakepool.Bytes32, raw []byte) {
	s.setRaw(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr stakepool.Address, key stakepool.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.setRaw(storageKey{addr, key}, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr stakepool.Address, key stakepool.Bytes32, dec func([]byte) error) error {
	return dec(s.getRaw(storageKey{addr, key}))
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return len(s.journal)
}

// RevertTo reverts state to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	for i := len(s.journal) - 1; i >= revision; i-- {
		e := s.journal[i]
		if e.existed {
			s.storage[e.key] = e.prev
		} else {
			delete(s.storage, e.key)
		}
	}
	s.journal = s.journal[:revision]
}
