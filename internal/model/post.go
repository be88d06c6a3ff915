package model

import (
	"errors"
	"time"
)

// Post represents a user's post with its metadata.
type Post struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	Caption      string     `db:"caption" json:"caption"`
	ImageURL     *string    `db:"image_url" json:"image_url"`
	ImageKey     *string    `db:"image_key" json:"-"`
	LikeCount    int        `db:"like_count" json:"like_count"`
	CommentCount int        `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`

	// Joined fields (not in posts table)
	Author   *UserSummary `json:"author,omitempty"`
	Likes    []int64      `json:"likes,omitempty"`
	Comments []Comment    `json:"comments,omitempty"`
	IsLiked  bool         `json:"is_liked"`
}

// FeedPost is an enriched post for feed display.
type FeedPost struct {
	Post
	Author UserSummary `json:"author"`
}

// FeedResponse is the paginated feed response.
type FeedResponse struct {
	Posts      []FeedPost `json:"posts"`
	NextCursor *string    `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

// Post constraints
const (
	MaxPostCaptionLength = 2200
)

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrCaptionMissing = errors.New("post text is required")
	ErrCaptionTooLong = errors.New("caption too long")
)
