package querybuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("user_id", "player_id", "player_name").
		From("favorites").
		Where(Eq("user_id", int64(42)), IsNull("deleted_at")).
		OrderBy("created_at", "player_id").
		Limit(10).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT user_id, player_id, player_name FROM favorites WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at, player_id LIMIT 10", query)
	assert.Equal(t, []any{int64(42)}, args)
}

func TestSelectBuilder_ExprBindsInOrder(t *testing.T) {
	query, args, err := Select("1").
		From("notified").
		Where(Eq("user_id", int64(1)), Expr("(match_id = ? AND status = ?)", int64(9), "live")).
		Limit(1).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1 FROM notified WHERE user_id = $1 AND (match_id = $2 AND status = $3) LIMIT 1", query)
	assert.Equal(t, []any{int64(1), int64(9), "live"}, args)
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("notified").
		Columns("user_id", "match_id", "status").
		Values(int64(42), int64(7), "live").
		Suffix("ON CONFLICT (user_id, match_id, status) DO NOTHING").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO notified (user_id, match_id, status) VALUES ($1, $2, $3) ON CONFLICT (user_id, match_id, status) DO NOTHING", query)
	assert.Len(t, args, 3)

	_, _, err = InsertInto("notified").Columns("a", "b").Values(1).ToSQL()
	assert.Error(t, err)
}

func TestInsertModel(t *testing.T) {
	type row struct {
		UserID   int64  `db:"user_id"`
		Plan     string `db:"plan,omitempty"`
		Ignored  string `db:"-"`
		internal string
	}

	query, args, err := InsertModel("subscribers", row{UserID: 5, Plan: "monthly", internal: "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO subscribers (user_id, plan) VALUES ($1, $2)", query)
	assert.Equal(t, []any{int64(5), "monthly"}, args)
	assert.Equal(t, []string{"user_id", "plan"}, Columns(row{}))

	_, _, err = InsertModel("subscribers", (*row)(nil), "")
	assert.Error(t, err)
}

func TestDeleteBuilder(t *testing.T) {
	cutoff := time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC)
	query, args, err := DeleteFrom("notified").Where(Lt("created_at", cutoff)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM notified WHERE created_at < $1", query)
	assert.Equal(t, []any{cutoff}, args)

	_, _, err = DeleteFrom("notified").ToSQL()
	assert.Error(t, err)
}
