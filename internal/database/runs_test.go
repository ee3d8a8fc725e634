package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExecer struct {
	mock.Mock
}

func (m *MockExecer) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, sql, args)
	return pgconn.CommandTag{}, mockArgs.Error(0)
}

func TestRunRepository_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an id and inserts all columns", func(t *testing.T) {
		db := new(MockExecer)
		db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
			return strings.Contains(sql, "INSERT INTO wishlist_run")
		}), mock.MatchedBy(func(args []interface{}) bool {
			return len(args) == 9 && args[3] == 12 && args[7] == "pushed"
		})).Return(nil)

		run := &Run{
			StartedAt:      time.Now().Add(-time.Minute),
			FinishedAt:     time.Now(),
			Found:          12,
			Downloaded:     3,
			Existing:       8,
			Failed:         1,
			PublishOutcome: "pushed",
		}

		require.NoError(t, NewRunRepository(db).Record(ctx, run))
		assert.NotEqual(t, uuid.Nil, run.ID)
		db.AssertExpectations(t)
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		db := new(MockExecer)
		id := uuid.New()
		db.On("Exec", ctx, mock.Anything, mock.MatchedBy(func(args []interface{}) bool {
			return args[0] == id
		})).Return(nil)

		require.NoError(t, NewRunRepository(db).Record(ctx, &Run{ID: id}))
		db.AssertExpectations(t)
	})

	t.Run("insert failure", func(t *testing.T) {
		db := new(MockExecer)
		db.On("Exec", ctx, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		err := NewRunRepository(db).Record(ctx, &Run{})
		assert.ErrorContains(t, err, "failed to insert run")
	})
}

func TestRunRepository_EnsureSchema(t *testing.T) {
	ctx := context.Background()
	db := new(MockExecer)
	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "CREATE TABLE IF NOT EXISTS wishlist_run")
	}), mock.Anything).Return(nil)

	require.NoError(t, NewRunRepository(db).EnsureSchema(ctx))
	db.AssertExpectations(t)
}
