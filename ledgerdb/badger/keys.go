package badger

import (
	"encoding/binary"

	"github.com/ledgerkit/ledgerdb/types"
)

// Every collection lives under its own key prefix. Secondary index keys
// carry no value unless noted and point back at the document through the
// last key component.
var (
	prefixTransaction = []byte("t/")
	prefixAsset       = []byte("a/")
	prefixMetadata    = []byte("m/")
	prefixBlock       = []byte("b/")
	prefixUTXO        = []byte("u/")
	prefixPreCommit   = []byte("p/")
	prefixValidators  = []byte("v/")
	prefixElection    = []byte("e/")
	prefixABCIChain   = []byte("c/")

	// ia/<asset id>\x00<seq> -> txid, in insertion order per asset.
	prefixAssetIndex = []byte("ia/")
	// io/<public key>\x00<txid>
	prefixOwnerIndex = []byte("io/")
	// is/<txid>\x00<output index>\x00<spender txid>
	prefixSpentIndex = []byte("is/")
	// ib/<txid>\x00<height>
	prefixBlockIndex = []byte("ib/")
	// ie/<election id>\x00<height>
	prefixElectionIndex = []byte("ie/")
	// ts/<seq> -> txid, global insertion order.
	prefixTxnSeq = []byte("ts/")

	txnSequenceKey = []byte("!seq/transactions")
)

const sep = 0x00

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func makeKey(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p) + 1
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for i, p := range parts {
		if i > 0 {
			key = append(key, sep)
		}
		key = append(key, p...)
	}
	return key
}

// makePrefix is makeKey with a trailing separator so that "ab" does not
// match keys of "abc".
func makePrefix(prefix []byte, parts ...[]byte) []byte {
	return append(makeKey(prefix, parts...), sep)
}

func txnKey(id string) []byte {
	return makeKey(prefixTransaction, []byte(id))
}

func txnSeqKey(seq uint64) []byte {
	return makeKey(prefixTxnSeq, uint64Bytes(seq))
}

func assetIndexKey(assetID string, seq uint64) []byte {
	return makeKey(prefixAssetIndex, []byte(assetID), uint64Bytes(seq))
}

func ownerIndexKey(pk string, txid string) []byte {
	return makeKey(prefixOwnerIndex, []byte(pk), []byte(txid))
}

func spentIndexPrefix(link types.TransactionLink) []byte {
	return makePrefix(prefixSpentIndex, []byte(link.TransactionID), uint64Bytes(link.OutputIndex))
}

func spentIndexKey(link types.TransactionLink, spender string) []byte {
	return append(spentIndexPrefix(link), spender...)
}

func blockIndexKey(txid string, height uint64) []byte {
	return makeKey(prefixBlockIndex, []byte(txid), uint64Bytes(height))
}

func electionIndexKey(electionID string, height uint64) []byte {
	return makeKey(prefixElectionIndex, []byte(electionID), uint64Bytes(height))
}

func assetKey(id string) []byte {
	return makeKey(prefixAsset, []byte(id))
}

func metadataKey(id string) []byte {
	return makeKey(prefixMetadata, []byte(id))
}

func blockKey(height uint64) []byte {
	return makeKey(prefixBlock, uint64Bytes(height))
}

func utxoKey(link types.TransactionLink) []byte {
	return makeKey(prefixUTXO, []byte(link.TransactionID), uint64Bytes(link.OutputIndex))
}

func preCommitKey(commitID string) []byte {
	return makeKey(prefixPreCommit, []byte(commitID))
}

func validatorsKey(height uint64) []byte {
	return makeKey(prefixValidators, uint64Bytes(height))
}

func electionKey(height uint64) []byte {
	return makeKey(prefixElection, uint64Bytes(height))
}

func abciChainKey(height uint64) []byte {
	return makeKey(prefixABCIChain, uint64Bytes(height))
}

// lastUint64 decodes the big-endian integer ending a key.
func lastUint64(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
