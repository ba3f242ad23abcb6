package postgres

import (
	"context"
	"fmt"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/types"
)

func (db *LedgerDb) exec(ctx context.Context, name string, query string, args ...interface{}) error {
	if _, err := db.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s() err: %w", name, err)
	}
	return nil
}

// StorePreCommitState is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StorePreCommitState(ctx context.Context, state types.PreCommitState) error {
	return db.exec(ctx, "StorePreCommitState", upsertPreCommitQuery,
		state.CommitID, string(encoding.EncodeJSON(state)))
}

// GetPreCommitState is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetPreCommitState(ctx context.Context, commitID string) (types.PreCommitState, bool, error) {
	var state types.PreCommitState
	found, err := db.queryDoc(ctx, &state, getPreCommitQuery, commitID)
	if err != nil {
		return types.PreCommitState{}, false, fmt.Errorf("GetPreCommitState() err: %w", err)
	}
	return state, found, nil
}

// StoreValidatorSet is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreValidatorSet(ctx context.Context, vs types.ValidatorSet) error {
	return db.exec(ctx, "StoreValidatorSet", upsertValidatorSetQuery,
		vs.Height, string(encoding.EncodeJSON(vs)))
}

// GetValidatorSet is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetValidatorSet(ctx context.Context, height *uint64) (types.ValidatorSet, bool, error) {
	var vs types.ValidatorSet
	var found bool
	var err error
	if height == nil {
		found, err = db.queryDoc(ctx, &vs, getLatestValidatorSetQuery)
	} else {
		found, err = db.queryDoc(ctx, &vs, getValidatorSetAtQuery, *height)
	}
	if err != nil {
		return types.ValidatorSet{}, false, fmt.Errorf("GetValidatorSet() err: %w", err)
	}
	return vs, found, nil
}

// DeleteValidatorSet is part of ledgerdb.LedgerDb.
func (db *LedgerDb) DeleteValidatorSet(ctx context.Context, height uint64) error {
	return db.exec(ctx, "DeleteValidatorSet", deleteValidatorSetQuery, height)
}

// StoreElectionResults is part of ledgerdb.LedgerDb. There is one election
// per height, a second store at the same height replaces the first.
func (db *LedgerDb) StoreElectionResults(ctx context.Context, election types.Election) error {
	return db.exec(ctx, "StoreElectionResults", upsertElectionQuery,
		election.Height, election.ElectionID, string(encoding.EncodeJSON(election)))
}

// GetElection is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetElection(ctx context.Context, electionID string) (types.Election, bool, error) {
	var election types.Election
	found, err := db.queryDoc(ctx, &election, getElectionQuery, electionID)
	if err != nil {
		return types.Election{}, false, fmt.Errorf("GetElection() err: %w", err)
	}
	return election, found, nil
}

// DeleteElections is part of ledgerdb.LedgerDb.
func (db *LedgerDb) DeleteElections(ctx context.Context, height uint64) error {
	return db.exec(ctx, "DeleteElections", deleteElectionsQuery, height)
}

// StoreABCIChain is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreABCIChain(ctx context.Context, chain types.ABCIChain) error {
	return db.exec(ctx, "StoreABCIChain", upsertABCIChainQuery,
		chain.Height, chain.ChainID, chain.IsSynced, string(encoding.EncodeJSON(chain)))
}

// GetLatestABCIChain is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetLatestABCIChain(ctx context.Context) (types.ABCIChain, bool, error) {
	var chain types.ABCIChain
	found, err := db.queryDoc(ctx, &chain, getLatestABCIChainQuery)
	if err != nil {
		return types.ABCIChain{}, false, fmt.Errorf("GetLatestABCIChain() err: %w", err)
	}
	return chain, found, nil
}

// DeleteABCIChain is part of ledgerdb.LedgerDb.
func (db *LedgerDb) DeleteABCIChain(ctx context.Context, height uint64) error {
	return db.exec(ctx, "DeleteABCIChain", deleteABCIChainQuery, height)
}
