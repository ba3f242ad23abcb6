package events

import (
	"context"
)

// Type identifies what happened.
type Type string

// BlockCommitted is published once a block and everything it carries is
// stored.
const BlockCommitted Type = "block_committed"

// Channel is the pub/sub channel every event is published on.
const Channel = "ledgerdb.events"

// Event describes a change to the ledger.
type Event struct {
	Type         Type     `codec:"type" json:"type"`
	Height       uint64   `codec:"height" json:"height"`
	Transactions []string `codec:"transactions" json:"transactions"`
}

// Publisher fans events out to subscribers. A subscription ends and its
// channel is closed when the subscribing context is done.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context) (<-chan Event, error)
	Close() error
}
