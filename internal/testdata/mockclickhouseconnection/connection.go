package mockclickhouseconnection

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/mock"
)

// Connection mocks clickhouse.Conn for the event repository and the
// ClickHouse migrations. Unset return values come back as nil.
type Connection struct {
	mock.Mock
}

var _ clickhouse.Conn = &Connection{}

// Exec records the query and its bind arguments flattened into one call.
func (m *Connection) Exec(ctx context.Context, query string, args ...any) error {
	return m.Called(append([]any{ctx, query}, args...)...).Error(0)
}

func (m *Connection) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	mockArgs := m.Called(ctx, query)
	batch, _ := mockArgs.Get(0).(driver.Batch)
	return batch, mockArgs.Error(1)
}

func (m *Connection) AsyncInsert(ctx context.Context, query string, wait bool) error {
	return m.Called(ctx, query, wait).Error(0)
}

func (m *Connection) Close() error {
	return m.Called().Error(0)
}

func (m *Connection) Contributors() []string {
	names, _ := m.Called().Get(0).([]string)
	return names
}

func (m *Connection) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Connection) ServerVersion() (*driver.ServerVersion, error) {
	mockArgs := m.Called()
	version, _ := mockArgs.Get(0).(*driver.ServerVersion)
	return version, mockArgs.Error(1)
}

func (m *Connection) Select(ctx context.Context, dest any, query string, args ...any) error {
	return m.Called(ctx, dest, query, args).Error(0)
}

func (m *Connection) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	rows, _ := mockArgs.Get(0).(driver.Rows)
	return rows, mockArgs.Error(1)
}

func (m *Connection) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	row, _ := m.Called(ctx, query, args).Get(0).(driver.Row)
	return row
}

func (m *Connection) Stats() driver.Stats {
	stats, _ := m.Called().Get(0).(driver.Stats)
	return stats
}
