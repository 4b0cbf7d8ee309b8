package store

import "github.com/lucasjlepore/trainlog"

// MemoryStore keeps the record set in process memory. It backs tests and
// callers that supply records directly without a durable file.
type MemoryStore struct {
	records []trainlog.SessionRecord
	// Fail forces every operation to report ErrUnavailable.
	Fail bool
}

// NewMemoryStore returns a store seeded with records.
func NewMemoryStore(records ...trainlog.SessionRecord) *MemoryStore {
	seeded := make([]trainlog.SessionRecord, len(records))
	copy(seeded, records)
	return &MemoryStore{records: seeded}
}

// LoadAll returns a copy of the stored set.
func (m *MemoryStore) LoadAll() ([]trainlog.SessionRecord, error) {
	if m.Fail {
		return nil, ErrUnavailable
	}
	out := make([]trainlog.SessionRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// SaveAll replaces the stored set.
func (m *MemoryStore) SaveAll(records []trainlog.SessionRecord) error {
	if m.Fail {
		return ErrUnavailable
	}
	m.records = make([]trainlog.SessionRecord, len(records))
	copy(m.records, records)
	return nil
}
