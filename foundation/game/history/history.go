// Package history persists one outcome row per settled round to an append
// only file of JSON documents, one per line.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Outcome represents the persisted result of one settled round. The sequence
// is the idempotency key for leaderboard recovery.
type Outcome struct {
	Sequence    uint64    `json:"sequence"`
	ActualValue uint      `json:"actual_value"`
	Voided      bool      `json:"voided"`
	WinnerID    string    `json:"winner_id,omitempty"`
	Guesses     int       `json:"guesses"`
	SettledAt   time.Time `json:"settled_at"`
}

// Store maintains the settled round outcomes on disk.
type Store struct {
	dbPath string
	file   *os.File
	latest Outcome
	count  int
	mu     sync.Mutex
}

// New constructs a store and reads any existing outcomes so the latest
// settled sequence is available for recovery.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history folder: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}

	st := Store{
		dbPath: dbPath,
		file:   file,
	}

	// Read the existing rows to capture the latest outcome and row count.
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var outcome Outcome
		if err := json.Unmarshal(scanner.Bytes(), &outcome); err != nil {
			return nil, fmt.Errorf("decoding history row %d: %w", st.count+1, err)
		}
		st.latest = outcome
		st.count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	return &st, nil
}

// Close cleanly closes the file underneath.
func (st *Store) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.file.Close()
}

// Add appends a new outcome row to the file.
func (st *Store) Add(outcome Outcome) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	if _, err := st.file.Write(append(data, '\n')); err != nil {
		return err
	}

	st.latest = outcome
	st.count++

	return nil
}

// Latest returns the most recently settled outcome and whether one exists.
func (st *Store) Latest() (Outcome, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.latest, st.count > 0
}

// Count returns the number of settled rounds on record.
func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.count
}
