package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/ledgerkit/ledgerdb/types"
)

// view runs a point lookup.
func (db *LedgerDb) view(fn func(txn *badgerdb.Txn) (bool, error)) (bool, error) {
	var found bool
	err := db.db.View(func(txn *badgerdb.Txn) error {
		var err error
		found, err = fn(txn)
		return err
	})
	return found, err
}

// StorePreCommitState is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StorePreCommitState(ctx context.Context, state types.PreCommitState) error {
	err := db.update(func(txn *badgerdb.Txn) error {
		return set(txn, preCommitKey(state.CommitID), state)
	})
	if err != nil {
		return fmt.Errorf("StorePreCommitState() err: %w", err)
	}
	return nil
}

// GetPreCommitState is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetPreCommitState(ctx context.Context, commitID string) (types.PreCommitState, bool, error) {
	var state types.PreCommitState
	found, err := db.view(func(txn *badgerdb.Txn) (bool, error) {
		return get(txn, preCommitKey(commitID), &state)
	})
	if err != nil {
		return types.PreCommitState{}, false, fmt.Errorf("GetPreCommitState() err: %w", err)
	}
	return state, found, nil
}

// StoreValidatorSet is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreValidatorSet(ctx context.Context, vs types.ValidatorSet) error {
	err := db.update(func(txn *badgerdb.Txn) error {
		return set(txn, validatorsKey(vs.Height), vs)
	})
	if err != nil {
		return fmt.Errorf("StoreValidatorSet() err: %w", err)
	}
	return nil
}

// GetValidatorSet is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetValidatorSet(ctx context.Context, height *uint64) (types.ValidatorSet, bool, error) {
	var vs types.ValidatorSet
	var seek []byte
	if height != nil {
		seek = validatorsKey(*height)
	}
	found, err := db.view(func(txn *badgerdb.Txn) (bool, error) {
		return latest(txn, prefixValidators, seek, &vs)
	})
	if err != nil {
		return types.ValidatorSet{}, false, fmt.Errorf("GetValidatorSet() err: %w", err)
	}
	return vs, found, nil
}

// DeleteValidatorSet is part of ledgerdb.LedgerDb.
func (db *LedgerDb) DeleteValidatorSet(ctx context.Context, height uint64) error {
	err := db.update(func(txn *badgerdb.Txn) error {
		return txn.Delete(validatorsKey(height))
	})
	if err != nil {
		return fmt.Errorf("DeleteValidatorSet() err: %w", err)
	}
	return nil
}

// deleteElection removes the election at height and its id index.
func deleteElection(txn *badgerdb.Txn, height uint64) error {
	var prev types.Election
	found, err := get(txn, electionKey(height), &prev)
	if err != nil || !found {
		return err
	}
	if err := txn.Delete(electionIndexKey(prev.ElectionID, height)); err != nil {
		return err
	}
	return txn.Delete(electionKey(height))
}

// StoreElectionResults is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreElectionResults(ctx context.Context, election types.Election) error {
	err := db.update(func(txn *badgerdb.Txn) error {
		if err := deleteElection(txn, election.Height); err != nil {
			return err
		}
		if err := set(txn, electionKey(election.Height), election); err != nil {
			return err
		}
		return txn.Set(electionIndexKey(election.ElectionID, election.Height), nil)
	})
	if err != nil {
		return fmt.Errorf("StoreElectionResults() err: %w", err)
	}
	return nil
}

// GetElection is part of ledgerdb.LedgerDb. The highest election stored
// under the id wins.
func (db *LedgerDb) GetElection(ctx context.Context, electionID string) (types.Election, bool, error) {
	var election types.Election
	found, err := db.view(func(txn *badgerdb.Txn) (bool, error) {
		var height uint64
		var indexed bool
		prefix := makePrefix(prefixElectionIndex, []byte(electionID))
		err := scan(txn, prefix, true, true, func(item *badgerdb.Item) (bool, error) {
			height = lastUint64(item.Key())
			indexed = true
			return false, nil
		})
		if err != nil || !indexed {
			return false, err
		}
		return get(txn, electionKey(height), &election)
	})
	if err != nil {
		return types.Election{}, false, fmt.Errorf("GetElection() err: %w", err)
	}
	return election, found, nil
}

// DeleteElections is part of ledgerdb.LedgerDb.
func (db *LedgerDb) DeleteElections(ctx context.Context, height uint64) error {
	err := db.update(func(txn *badgerdb.Txn) error {
		return deleteElection(txn, height)
	})
	if err != nil {
		return fmt.Errorf("DeleteElections() err: %w", err)
	}
	return nil
}

// StoreABCIChain is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreABCIChain(ctx context.Context, chain types.ABCIChain) error {
	err := db.update(func(txn *badgerdb.Txn) error {
		return set(txn, abciChainKey(chain.Height), chain)
	})
	if err != nil {
		return fmt.Errorf("StoreABCIChain() err: %w", err)
	}
	return nil
}

// GetLatestABCIChain is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetLatestABCIChain(ctx context.Context) (types.ABCIChain, bool, error) {
	var chain types.ABCIChain
	found, err := db.view(func(txn *badgerdb.Txn) (bool, error) {
		return latest(txn, prefixABCIChain, nil, &chain)
	})
	if err != nil {
		return types.ABCIChain{}, false, fmt.Errorf("GetLatestABCIChain() err: %w", err)
	}
	return chain, found, nil
}

// DeleteABCIChain is part of ledgerdb.LedgerDb.
func (db *LedgerDb) DeleteABCIChain(ctx context.Context, height uint64) error {
	err := db.update(func(txn *badgerdb.Txn) error {
		return txn.Delete(abciChainKey(height))
	})
	if err != nil {
		return fmt.Errorf("DeleteABCIChain() err: %w", err)
	}
	return nil
}
