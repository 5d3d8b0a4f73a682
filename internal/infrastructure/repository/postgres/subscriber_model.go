package postgres

import "time"

type subscriberTableModel struct {
	UserID       int64     `db:"user_id"`
	Status       string    `db:"status"`
	Plan         string    `db:"plan"`
	SubscribedAt time.Time `db:"subscribed_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type subscriberInsertModel struct {
	UserID       int64     `db:"user_id"`
	Status       string    `db:"status"`
	Plan         string    `db:"plan"`
	SubscribedAt time.Time `db:"subscribed_at"`
}
