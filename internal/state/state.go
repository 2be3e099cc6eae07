package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"FXSentinel/internal/model"
)

// Load reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func Load(filePath string) (*model.SentinelState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &model.SentinelState{}, nil
		}
		return nil, err
	}
	var st model.SentinelState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save writes the state to a JSON file.
func Save(filePath string, st *model.SentinelState) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}
