package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"liquidityPool/internal/model"
)

// SnapshotStore persists the engine state to a JSON file.
type SnapshotStore struct {
	Path string
}

// Load reads the snapshot; ok is false when no snapshot exists yet.
func (s *SnapshotStore) Load() (model.EngineState, bool, error) {
	if s == nil || s.Path == "" {
		return model.EngineState{}, false, nil
	}

	stat, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.EngineState{}, false, nil
		}
		return model.EngineState{}, false, fmt.Errorf("stat snapshot: %w", err)
	}
	if stat.IsDir() {
		return model.EngineState{}, false, fmt.Errorf("snapshot path is a directory")
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return model.EngineState{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var state model.EngineState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.EngineState{}, false, fmt.Errorf("parse snapshot: %w", err)
	}
	return state, true, nil
}

// Save replaces the snapshot atomically.
func (s *SnapshotStore) Save(state model.EngineState) error {
	if s == nil || s.Path == "" {
		return fmt.Errorf("snapshot path is required")
	}

	state.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := WriteFileAtomic(s.Path, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
