package postgres

import "time"

type favoriteTableModel struct {
	UserID     int64     `db:"user_id"`
	PlayerID   int64     `db:"player_id"`
	PlayerName string    `db:"player_name"`
	CreatedAt  time.Time `db:"created_at"`
}

type favoriteInsertModel struct {
	UserID     int64  `db:"user_id"`
	PlayerID   int64  `db:"player_id"`
	PlayerName string `db:"player_name"`
}
