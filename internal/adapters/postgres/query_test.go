package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListFiltersOrdersAndPaging(t *testing.T) {
	q := backend.NewQuery().
		Equal("workerId", "w1").
		Equal("type", model.TypeCheckIn, model.TypeCheckOut).
		OrderDesc("timestamp").
		WithLimit(10).
		WithOffset(20)

	stmt, err := buildList(backend.CheckIns, q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT count(*) FROM documents WHERE collection = $1 AND data #>> '{workerId}' IN ($2) AND data #>> '{type}' IN ($3, $4)",
		stmt.count)
	assert.Equal(t,
		"SELECT id, created_at, updated_at, data FROM documents WHERE collection = $1 AND data #>> '{workerId}' IN ($2) AND data #>> '{type}' IN ($3, $4) ORDER BY data #> '{timestamp}' DESC, seq DESC LIMIT 10 OFFSET 20",
		stmt.selectSQL)
	assert.Equal(t, []any{"checkins", "w1", "check-in", "check-out"}, stmt.args)
}

func TestBuildListSystemAndNestedFields(t *testing.T) {
	created := time.Date(2024, 4, 18, 8, 0, 0, 0, time.UTC)
	q := backend.NewQuery().
		Equal("contactInfo.email", "ann@example.com").
		Equal(backend.FieldCreatedAt, created.Format(time.RFC3339)).
		Equal("anonymous", true).
		OrderDesc(backend.FieldCreatedAt)

	stmt, err := buildList(backend.Workers, q)
	require.NoError(t, err)

	assert.Contains(t, stmt.selectSQL, "data #>> '{contactInfo,email}' IN ($2)")
	assert.Contains(t, stmt.selectSQL, "created_at IN ($3)")
	assert.Contains(t, stmt.selectSQL, "ORDER BY created_at DESC, seq DESC")
	assert.NotContains(t, stmt.selectSQL, "LIMIT")
	assert.Equal(t, []any{"workers", "ann@example.com", created, "true"}, stmt.args)
}

func TestBuildListTieBreakFollowsPrimaryOrder(t *testing.T) {
	stmt, err := buildList(backend.CheckIns, backend.NewQuery().OrderAsc("timestamp").OrderDesc(backend.FieldCreatedAt))
	require.NoError(t, err)
	assert.Contains(t, stmt.selectSQL, "ORDER BY data #> '{timestamp}' ASC, created_at DESC, seq ASC")

	stmt, err = buildList(backend.CheckIns, backend.NewQuery())
	require.NoError(t, err)
	assert.Contains(t, stmt.selectSQL, "ORDER BY seq ASC")
}

func TestBuildListRejectsUnsafeAttributes(t *testing.T) {
	_, err := buildList(backend.Workers, backend.NewQuery().Equal("name'; DROP TABLE documents; --", "x"))
	assert.Error(t, err)

	_, err = buildList(backend.Workers, backend.NewQuery().OrderAsc("a..b"))
	assert.Error(t, err)

	_, err = buildList(backend.Workers, backend.NewQuery().Equal("name"))
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: uniqueViolation}, backend.ErrConflict},
		{"connection refused", errors.New("dial tcp: connection refused"), backend.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tt.err), tt.want)
		})
	}

	err := classify("op", &pgconn.PgError{Code: "42601"})
	assert.NotErrorIs(t, err, backend.ErrUnavailable)
	assert.ErrorIs(t, classify("op", context.Canceled), context.Canceled)
}
