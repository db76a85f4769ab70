package changelog_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/database"
)

type (
	statement struct {
		query string
		args  []any
	}

	mockConn struct {
		rows       *mockRows
		queryErr   error
		updateErr  error
		execErr    error
		affected   int64
		statements []statement
	}

	mockRows struct {
		data    [][]any
		current int
		closed  bool
		rowsErr error
	}
)

func (m *mockConn) Query(_ context.Context, query string, args ...any) (database.Rows, error) {
	m.statements = append(m.statements, statement{query: query, args: args})
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if m.rows == nil {
		return &mockRows{}, nil
	}
	return m.rows, nil
}

func (m *mockConn) Update(_ context.Context, query string, args ...any) (int64, error) {
	m.statements = append(m.statements, statement{query: query, args: args})
	return m.affected, m.updateErr
}

func (m *mockConn) Exec(_ context.Context, script string) error {
	m.statements = append(m.statements, statement{query: script})
	return m.execErr
}

func (m *mockConn) Close() error { return nil }

func (m *mockRows) Next() bool {
	if m.current >= len(m.data) {
		return false
	}
	m.current++
	return true
}

func (m *mockRows) Scan(dest ...any) error {
	row := m.data[m.current-1]
	if len(dest) != len(row) {
		return errors.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}

	for i, d := range dest {
		switch v := d.(type) {
		case sql.Scanner:
			if err := v.Scan(row[i]); err != nil {
				return err
			}
		case *int64:
			*v = row[i].(int64)
		case *string:
			*v = row[i].(string)
		case *time.Time:
			*v = row[i].(time.Time)
		default:
			return errors.Errorf("unsupported destination %T", d)
		}
	}

	return nil
}

func (m *mockRows) Err() error { return m.rowsErr }

func (m *mockRows) Close() error {
	m.closed = true
	return nil
}
