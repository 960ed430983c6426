package records

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store, used when no database is configured.
type Memory struct {
	mu           sync.RWMutex
	notes        []Note
	translations []Translation
	now          func() time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) AppendNote(_ context.Context, n Note) (Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = int64(len(m.notes) + 1)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now().UTC()
	}
	m.notes = append(m.notes, n)
	return n, nil
}

func (m *Memory) MostRecentNote(ctx context.Context, userID int64) (Note, error) {
	notes, _ := m.SearchNotes(ctx, userID, "", 1)
	if len(notes) == 0 {
		return Note{}, ErrEmptyResult
	}
	return notes[0], nil
}

func (m *Memory) SearchNotes(_ context.Context, userID int64, substr string, limit int) ([]Note, error) {
	needle := strings.ToLower(substr)
	m.mu.RLock()
	out := make([]Note, 0)
	for _, n := range m.notes {
		if n.UserID == userID && strings.Contains(strings.ToLower(n.Text), needle) {
			out = append(out, n)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if l := clampLimit(limit); len(out) > l {
		out = out[:l]
	}
	return out, nil
}

func (m *Memory) AppendTranslation(_ context.Context, t Translation) (Translation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = int64(len(m.translations) + 1)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now().UTC()
	}
	m.translations = append(m.translations, t)
	return t, nil
}

// Translations returns a copy of the audit log.
func (m *Memory) Translations() []Translation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Translation(nil), m.translations...)
}
