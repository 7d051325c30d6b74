package mockpgx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// Conn mocks the pool methods used by the repositories.
type Conn struct {
	mock.Mock
}

func (m *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	callArgs := []any{ctx, sql}
	callArgs = append(callArgs, args...)
	mockArgs := m.Called(callArgs...)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	callArgs := []any{ctx, sql}
	callArgs = append(callArgs, args...)
	return m.Called(callArgs...).Get(0).(pgx.Row)
}

func (m *Conn) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return m.Called(ctx, b).Get(0).(pgx.BatchResults)
}

// Row is a pgx.Row whose Scan is driven by ScanFunc.
type Row struct {
	ScanFunc func(dest ...any) error
}

func (r *Row) Scan(dest ...any) error {
	return r.ScanFunc(dest...)
}

// ErrRow returns a Row whose Scan fails with err.
func ErrRow(err error) *Row {
	return &Row{ScanFunc: func(...any) error { return err }}
}

// BatchResults mocks pgx.BatchResults.
type BatchResults struct {
	mock.Mock
}

var _ pgx.BatchResults = &BatchResults{}

func (m *BatchResults) Exec() (pgconn.CommandTag, error) {
	mockArgs := m.Called()
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *BatchResults) Query() (pgx.Rows, error) {
	mockArgs := m.Called()
	rows, _ := mockArgs.Get(0).(pgx.Rows)
	return rows, mockArgs.Error(1)
}

func (m *BatchResults) QueryRow() pgx.Row {
	return m.Called().Get(0).(pgx.Row)
}

func (m *BatchResults) Close() error {
	return m.Called().Error(0)
}
