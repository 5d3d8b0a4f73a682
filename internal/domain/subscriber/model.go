package subscriber

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

type Subscriber struct {
	UserID       int64
	Status       Status
	Plan         string
	SubscribedAt time.Time
	UpdatedAt    time.Time
}

func (s Subscriber) Active() bool {
	return s.Status == StatusActive
}
