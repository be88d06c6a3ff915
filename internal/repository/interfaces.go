package repository

import (
	"context"

	"sociogram/internal/cache"
	"sociogram/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// GetSummaries resolves ids to profile projections; ids that do not
	// resolve are silently skipped to tolerate stale references.
	GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error)
	// IncrementProfileViews bumps the viewed_profile counter atomically.
	IncrementProfileViews(ctx context.Context, userID int64) error
}

type FriendRepository interface {
	// AddPair inserts both directions of the symmetric edge in one
	// transaction. Returns false if the edge already existed.
	AddPair(ctx context.Context, userID, friendID int64) (bool, error)
	// RemovePair deletes both directions in one transaction.
	// Returns false if there was no edge.
	RemovePair(ctx context.Context, userID, friendID int64) (bool, error)
	Exists(ctx context.Context, userID, friendID int64) (bool, error)
	GetFriends(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFriendIDs(ctx context.Context, userID int64) ([]int64, error)
	// CheckFriends batch-checks which of the given ids are friends of userID.
	CheckFriends(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// GetByIDs returns posts in the order of the input ids (cache hydration).
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	Delete(ctx context.Context, postID, userID int64) error
	// ListAll pages every post, newest first, ties broken by id.
	ListAll(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error)
	// ListByAuthors pages posts restricted to the given author set.
	ListByAuthors(ctx context.Context, authorIDs []int64, cursor *string, limit int) ([]model.Post, *string, error)
	GetRecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error)
	GetFeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error)
	// ToggleLike flips userID's membership in the post's like set and
	// adjusts like_count, all in one transaction. Returns true if the
	// like was added, false if removed.
	ToggleLike(ctx context.Context, postID, userID int64) (bool, error)
	GetLikerIDs(ctx context.Context, postID int64) ([]int64, error)
	// CheckLikes checks which posts the user has liked.
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

type CommentRepository interface {
	// Add appends a comment and bumps the post's comment_count in one transaction.
	Add(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
	// ListByPost returns a post's comments in append order with authors joined.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
}
