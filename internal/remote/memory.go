package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store. Rows are kept as decoded JSON objects so that
// Upsert and SelectWhere round-trip through the same encoding as the HTTP client.
type Memory struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]any
	order  map[string][]string

	// UpsertHook, when set, runs before each upsert; a non-nil error fails it.
	UpsertHook func(table string, row map[string]any) error
	// SelectHook, when set, runs before each select; a non-nil error fails it.
	SelectHook func(table string) error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string]map[string]map[string]any),
		order:  make(map[string][]string),
	}
}

func (m *Memory) Upsert(ctx context.Context, table string, row any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	obj, err := toObject(row)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", table, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpsertHook != nil {
		if err := m.UpsertHook(table, obj); err != nil {
			return err
		}
	}

	keyCol := ConflictKey(table)
	key, ok := obj[keyCol].(string)
	if !ok || key == "" {
		return &APIError{Status: 400, Code: "23502", Message: fmt.Sprintf("null value in column %q", keyCol)}
	}

	rows := m.tables[table]
	if rows == nil {
		rows = make(map[string]map[string]any)
		m.tables[table] = rows
	}
	if existing, ok := rows[key]; ok {
		for k, v := range obj {
			existing[k] = v
		}
		return nil
	}
	rows[key] = obj
	m.order[table] = append(m.order[table], key)
	return nil
}

func (m *Memory) SelectWhere(ctx context.Context, table, column, value string, dest any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	m.mu.Lock()
	if m.SelectHook != nil {
		if err := m.SelectHook(table); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	matched := make([]map[string]any, 0)
	for _, key := range m.order[table] {
		row := m.tables[table][key]
		if fmt.Sprint(row[column]) == value {
			matched = append(matched, row)
		}
	}
	data, err := json.Marshal(matched)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode %s rows: %w", table, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// Count returns how many rows table holds.
func (m *Memory) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

// Keys returns the conflict keys of table in sorted order.
func (m *Memory) Keys(table string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.tables[table]))
	for k := range m.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toObject(row any) (map[string]any, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}
