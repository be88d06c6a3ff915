package model

import (
	"errors"
	"time"
)

// Friendship is one direction of a symmetric edge. Both directions are
// stored; the repository writes them in a single transaction.
type Friendship struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	FriendID  int64     `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FriendListResponse is the friend list payload.
type FriendListResponse struct {
	Users []UserSummary `json:"users"`
}

// ToggleFriendResponse reports the new state after a friendship toggle,
// along with the updated friend list.
type ToggleFriendResponse struct {
	Added bool          `json:"added"`
	Users []UserSummary `json:"users"`
}

var (
	// ErrCannotFriendSelf is returned when a user tries to friend themselves.
	ErrCannotFriendSelf = errors.New("cannot friend yourself")
)
