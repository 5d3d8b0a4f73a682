package notification

import (
	"fmt"
	"time"
)

// Record marks that UserID was told about MatchID reaching Status.
type Record struct {
	UserID    int64
	MatchID   int64
	Status    string
	CreatedAt time.Time
}

func (r Record) Key() Key {
	return Key{UserID: r.UserID, MatchID: r.MatchID, Status: r.Status}
}

// Key is the uniqueness tuple of the ledger.
type Key struct {
	UserID  int64
	MatchID int64
	Status  string
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d:%s", k.UserID, k.MatchID, k.Status)
}

type MarkResult int

const (
	MarkInserted MarkResult = iota + 1
	MarkAlreadyExists
)

const DefaultRetention = 30 * 24 * time.Hour
