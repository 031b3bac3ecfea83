// Package telemetry appends one CSV row per finished sector to a ledger file.
package telemetry

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
)

// Entry is one ledger row.
type Entry struct {
	Time             string `csv:"time"`
	Pilot            string `csv:"pilot"`
	Sector           int    `csv:"sector"`
	Result           string `csv:"result"`
	PercentDestroyed int    `csv:"percent_destroyed"`
	OreCollected     int    `csv:"ore_collected"`
	Credits          int    `csv:"credits"`
	Hull             int    `csv:"hull"`
	Ticks            uint64 `csv:"ticks"`
}

// Ledger appends entries to a CSV file. It is safe for concurrent use by
// several sessions. A nil Ledger discards every entry.
type Ledger struct {
	mu            sync.Mutex
	file          *os.File
	headerWritten bool
}

// Open opens or creates the ledger at path, appending to existing rows.
// Returns nil if path is empty (ledger disabled).
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat ledger: %w", err)
	}
	return &Ledger{file: f, headerWritten: info.Size() > 0}, nil
}

// Write appends e. An empty Time is filled with the current UTC time.
func (l *Ledger) Write(e Entry) error {
	if l == nil {
		return nil
	}
	if e.Time == "" {
		e.Time = time.Now().UTC().Format(time.RFC3339)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records := []Entry{e}
	if !l.headerWritten {
		if err := gocsv.Marshal(records, l.file); err != nil {
			return fmt.Errorf("writing ledger: %w", err)
		}
		l.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadAll loads every entry from the ledger file at path.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	var entries []Entry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return entries, nil
}
