package replay

import (
	"context"

	"liquidityPool/internal/model"
	"liquidityPool/internal/storage"
)

// Checkpointer persists the last applied operation sequence number.
type Checkpointer interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, seq uint64) error
}

// SnapshotCheckpointer writes the sequence number inside the engine snapshot,
// so the applied operations and the resume point are saved atomically.
type SnapshotCheckpointer struct {
	Store  *storage.SnapshotStore
	Export func() model.EngineState
}

func (c *SnapshotCheckpointer) Load(context.Context) (uint64, bool, error) {
	state, ok, err := c.Store.Load()
	if err != nil || !ok {
		return 0, false, err
	}
	return state.ReplaySeq, state.ReplaySeq > 0, nil
}

func (c *SnapshotCheckpointer) Save(_ context.Context, seq uint64) error {
	state := c.Export()
	state.ReplaySeq = seq
	return c.Store.Save(state)
}
