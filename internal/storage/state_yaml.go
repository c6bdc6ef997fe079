package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const stateFileName = "state.yaml"

// State holds everything StillBreath persists between launches.
type State struct {
	MeditationCount int
	HoldDuration    time.Duration
}

type yamlState struct {
	MeditationCount     int `yaml:"meditation_count"`
	HoldDurationSeconds int `yaml:"hold_duration_seconds"`
}

// Store reads and writes the persistent state file.
type Store struct {
	path string
}

// NewStore creates a Store rooted in the user config directory.
func NewStore(appName string) (*Store, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	return &Store{path: filepath.Join(configDir, appName, stateFileName)}, nil
}

// NewStoreAt creates a Store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state. A missing file yields the zero state;
// unreadable or malformed files also yield the zero state along with the
// error, so callers can log and carry on.
func (store *Store) Load() (State, error) {
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read state file: %w", err)
	}

	var fileData yamlState
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return State{}, fmt.Errorf("parse state yaml: %w", err)
	}

	state := State{}
	if fileData.MeditationCount > 0 {
		state.MeditationCount = fileData.MeditationCount
	}
	if fileData.HoldDurationSeconds > 0 {
		state.HoldDuration = time.Duration(fileData.HoldDurationSeconds) * time.Second
	}
	return state, nil
}

// Save writes the persisted state, creating the directory as needed.
func (store *Store) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlState{
		MeditationCount:     state.MeditationCount,
		HoldDurationSeconds: int(state.HoldDuration / time.Second),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}

	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// LoadCount reads the completed-session counter, falling back to zero.
func (store *Store) LoadCount() (int, error) {
	state, err := store.Load()
	return state.MeditationCount, err
}

// SaveCount writes the completed-session counter while preserving the
// rest of the state file.
func (store *Store) SaveCount(count int) error {
	state, _ := store.Load()
	state.MeditationCount = count
	return store.Save(state)
}

// SaveHoldDuration writes the hold preference while preserving the counter.
func (store *Store) SaveHoldDuration(value time.Duration) error {
	state, _ := store.Load()
	state.HoldDuration = value
	return store.Save(state)
}
