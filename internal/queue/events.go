package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the feed stream
const (
	EventPostCreated   = "post_created"
	EventPostDeleted   = "post_deleted"
	EventFriendAdded   = "friend_added"
	EventFriendRemoved = "friend_removed"
)

// Stream and consumer group names
const (
	StreamFeed        = "stream:feed"
	ConsumerGroupFeed = "feed_workers"
)

// FeedEvent represents an event published to the feed stream.
// All feed-related events share this structure.
type FeedEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix microseconds when the event occurred

	// Post events
	PostID   int64 `json:"post_id,omitempty"`
	AuthorID int64 `json:"author_id,omitempty"`

	// Friendship events. The edge is symmetric: workers update both
	// users' feeds.
	UserID   int64 `json:"user_id,omitempty"`
	FriendID int64 `json:"friend_id,omitempty"`
}

// NewPostCreatedEvent signals a new post to fan out to friends' feed caches.
func NewPostCreatedEvent(postID, authorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostCreated,
		Timestamp: time.Now().UnixMicro(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewPostDeletedEvent signals a deleted post to prune from feed caches.
func NewPostDeletedEvent(postID, authorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().UnixMicro(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewFriendAddedEvent signals a new friendship; workers backfill each
// user's feed with the other's recent posts.
func NewFriendAddedEvent(userID, friendID int64) FeedEvent {
	return FeedEvent{
		Type:      EventFriendAdded,
		Timestamp: time.Now().UnixMicro(),
		UserID:    userID,
		FriendID:  friendID,
	}
}

// NewFriendRemovedEvent signals a removed friendship; workers prune each
// user's feed of the other's posts.
func NewFriendRemovedEvent(userID, friendID int64) FeedEvent {
	return FeedEvent{
		Type:      EventFriendRemoved,
		Timestamp: time.Now().UnixMicro(),
		UserID:    userID,
		FriendID:  friendID,
	}
}

// ToMap converts the event to a map for Redis XADD. Streams store
// field-value pairs, so the payload rides in a JSON "data" field.
func (e FeedEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseFeedEvent parses a FeedEvent from Redis stream message values.
func ParseFeedEvent(values map[string]interface{}) (FeedEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return FeedEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event FeedEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return FeedEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
