package favorite

import "time"

// Favorite is a player followed by a chat user. (UserID, PlayerID) is unique.
type Favorite struct {
	UserID     int64
	PlayerID   int64
	PlayerName string
	CreatedAt  time.Time
}

type AddResult int

const (
	AddInserted AddResult = iota + 1
	AddAlreadyExists
)

func (r AddResult) String() string {
	switch r {
	case AddInserted:
		return "inserted"
	case AddAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

type RemoveResult int

const (
	RemoveDeleted RemoveResult = iota + 1
	RemoveNotFound
)
