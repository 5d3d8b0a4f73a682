package postgres

import "time"

type notifiedInsertModel struct {
	UserID    int64     `db:"user_id"`
	MatchID   int64     `db:"match_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}
