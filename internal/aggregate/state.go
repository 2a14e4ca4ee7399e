package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"liquidityPool/internal/storage"
)

// StateStore persists the last processed journal timestamp.
type StateStore interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, ts uint64) error
}

// FileStateStore keeps the resume timestamp in a JSON file. The file records
// the window size it was written for; a mismatch fails the load because the
// timestamp marks boundaries of the old windows.
type FileStateStore struct {
	Path          string
	WindowSeconds uint64
}

type fileState struct {
	LastProcessed uint64 `json:"last_processed_ts"`
	WindowSeconds uint64 `json:"window_seconds,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

func (s *FileStateStore) Load(context.Context) (uint64, bool, error) {
	if s == nil || s.Path == "" {
		return 0, false, nil
	}
	data, err := os.ReadFile(s.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read state: %w", err)
	}

	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		return 0, false, fmt.Errorf("parse state %s: %w", s.Path, err)
	}
	if st.WindowSeconds != 0 && s.WindowSeconds != 0 && st.WindowSeconds != s.WindowSeconds {
		return 0, false, fmt.Errorf("state file %s was written for a %ds window, not %ds",
			s.Path, st.WindowSeconds, s.WindowSeconds)
	}
	return st.LastProcessed, true, nil
}

func (s *FileStateStore) Save(_ context.Context, ts uint64) error {
	if s == nil || s.Path == "" {
		return nil
	}
	data, err := json.Marshal(fileState{
		LastProcessed: ts,
		WindowSeconds: s.WindowSeconds,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := storage.WriteFileAtomic(s.Path, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
