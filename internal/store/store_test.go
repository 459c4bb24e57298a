package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/internal/reporting"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

var (
	runID     = uuid.MustParse("7b0c1f3e-5a52-4d8e-9a3c-2f1e8d6b4c10")
	createdAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func sampleBundle() *reporting.Bundle {
	return &reporting.Bundle{
		RunID:       runID.String(),
		GeneratedAt: createdAt.In(time.FixedZone("ACDT", 10*3600+30*60)),
		System:      reporting.SystemInfo{Name: "Adelaide Solar Network", Location: "Adelaide, SA", TotalCapacityKW: 8},
	}
}

func newStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	s, err := New(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)
	return s, mockPool
}

// -- Test Cases --

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr, "Error from ping should be propagated")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(flexibleSQLMatcher(sqlCreateRuns)).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	t.Run("inserts the snapshot in UTC", func(t *testing.T) {
		s, mock := newStore(t)
		mock.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).
			WithArgs(runID, "Adelaide Solar Network", createdAt, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, s.SaveRun(context.Background(), sampleBundle()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a non-uuid run id", func(t *testing.T) {
		s, mock := newStore(t)
		b := sampleBundle()
		b.RunID = "run-1"

		err := s.SaveRun(context.Background(), b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid run id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps insert failures", func(t *testing.T) {
		s, mock := newStore(t)
		dbErr := errors.New("disk full")
		mock.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).
			WithArgs(runID, "Adelaide Solar Network", createdAt, pgxmock.AnyArg()).
			WillReturnError(dbErr)

		err := s.SaveRun(context.Background(), sampleBundle())
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetRun(t *testing.T) {
	t.Run("decodes the snapshot", func(t *testing.T) {
		s, mock := newStore(t)
		payload, err := json.Marshal(sampleBundle())
		require.NoError(t, err)

		mock.ExpectQuery(flexibleSQLMatcher(sqlSelectRun)).
			WithArgs(runID).
			WillReturnRows(pgxmock.NewRows([]string{"system_name", "created_at", "payload"}).
				AddRow("Adelaide Solar Network", createdAt, payload))

		run, err := s.GetRun(context.Background(), runID)
		require.NoError(t, err)
		assert.Equal(t, runID, run.ID)
		assert.Equal(t, "Adelaide Solar Network", run.SystemName)
		assert.Equal(t, createdAt, run.CreatedAt)
		require.NotNil(t, run.Bundle)
		assert.Equal(t, runID.String(), run.Bundle.RunID)
		assert.InDelta(t, 8.0, run.Bundle.System.TotalCapacityKW, 1e-9)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		s, mock := newStore(t)
		mock.ExpectQuery(flexibleSQLMatcher(sqlSelectRun)).
			WithArgs(runID).
			WillReturnError(pgx.ErrNoRows)

		_, err := s.GetRun(context.Background(), runID)
		assert.ErrorIs(t, err, ErrRunNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt payload", func(t *testing.T) {
		s, mock := newStore(t)
		mock.ExpectQuery(flexibleSQLMatcher(sqlSelectRun)).
			WithArgs(runID).
			WillReturnRows(pgxmock.NewRows([]string{"system_name", "created_at", "payload"}).
				AddRow("Adelaide Solar Network", createdAt, []byte("{not json")))

		_, err := s.GetRun(context.Background(), runID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode run snapshot")
	})
}

func TestListRuns(t *testing.T) {
	t.Run("returns newest first with the default limit", func(t *testing.T) {
		s, mock := newStore(t)
		older := uuid.MustParse("00000000-0000-4000-8000-000000000001")
		mock.ExpectQuery(flexibleSQLMatcher(sqlListRuns)).
			WithArgs(defaultListLimit).
			WillReturnRows(pgxmock.NewRows([]string{"id", "system_name", "created_at"}).
				AddRow(runID, "Adelaide Solar Network", createdAt).
				AddRow(older, "Mawson Lakes", createdAt.Add(-time.Hour)))

		runs, err := s.ListRuns(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, []RunSummary{
			{ID: runID, SystemName: "Adelaide Solar Network", CreatedAt: createdAt},
			{ID: older, SystemName: "Mawson Lakes", CreatedAt: createdAt.Add(-time.Hour)},
		}, runs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty archive", func(t *testing.T) {
		s, mock := newStore(t)
		mock.ExpectQuery(flexibleSQLMatcher(sqlListRuns)).
			WithArgs(5).
			WillReturnRows(pgxmock.NewRows([]string{"id", "system_name", "created_at"}))

		runs, err := s.ListRuns(context.Background(), 5)
		require.NoError(t, err)
		assert.NotNil(t, runs)
		assert.Empty(t, runs)
	})

	t.Run("query failure", func(t *testing.T) {
		s, mock := newStore(t)
		mock.ExpectQuery(flexibleSQLMatcher(sqlListRuns)).
			WithArgs(5).
			WillReturnError(errors.New("connection reset"))

		_, err := s.ListRuns(context.Background(), 5)
		assert.ErrorContains(t, err, "failed to query runs")
	})
}
