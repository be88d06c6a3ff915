package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sociogram/internal/cache"
	"sociogram/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post with an empty like set and comment list.
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (user_id, caption, image_url, image_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, like_count, comment_count, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query, p.UserID, p.Caption, p.ImageURL, p.ImageKey)
	err := row.Scan(&p.ID, &p.LikeCount, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, user_id, caption, image_url, image_key, like_count, comment_count, created_at, updated_at
		FROM posts
		WHERE id = $1 AND deleted_at IS NULL
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// GetByIDs retrieves multiple posts, re-ordered to match the input ids.
// Used for hydrating the feed from cache.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, user_id, caption, image_url, image_key, like_count, comment_count, created_at, updated_at
		FROM posts
		WHERE id = ANY($1) AND deleted_at IS NULL
	`
	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	postsMap := make(map[int64]model.Post, len(posts))
	for _, p := range posts {
		postsMap[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := postsMap[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// postExists checks for a live post row. Runs against the pool or inside a
// transaction, wherever the caller needs the answer to hold.
func postExists(ctx context.Context, q sqlx.QueryerContext, postID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// Delete performs a soft delete. Only the author may delete.
func (r *postRepository) Delete(ctx context.Context, postID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		exists, _ := postExists(ctx, r.db, postID)
		if exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}

	return nil
}

// ListAll pages every post, newest first. Ties on created_at are broken by
// id descending so pagination stays deterministic.
func (r *postRepository) ListAll(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT id, user_id, caption, image_url, image_key, like_count, comment_count, created_at, updated_at
			FROM posts
			WHERE deleted_at IS NULL
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		`
		args = []interface{}{limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = `
			SELECT id, user_id, caption, image_url, image_key, like_count, comment_count, created_at, updated_at
			FROM posts
			WHERE deleted_at IS NULL AND (created_at, id) < ($1, $2)
			ORDER BY created_at DESC, id DESC
			LIMIT $3
		`
		args = []interface{}{ts, id, limit + 1}
	}

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}

	return trimPage(posts, limit)
}

// ListByAuthors pages posts restricted to the given author set, same ordering
// as ListAll. An empty author set yields an empty page.
func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []int64, cursor *string, limit int) ([]model.Post, *string, error) {
	if len(authorIDs) == 0 {
		return []model.Post{}, nil, nil
	}

	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT id, user_id, caption, image_url, image_key, like_count, comment_count, created_at, updated_at
			FROM posts
			WHERE deleted_at IS NULL AND user_id = ANY($1)
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		args = []interface{}{pq.Array(authorIDs), limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = `
			SELECT id, user_id, caption, image_url, image_key, like_count, comment_count, created_at, updated_at
			FROM posts
			WHERE deleted_at IS NULL AND user_id = ANY($1) AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		`
		args = []interface{}{pq.Array(authorIDs), ts, id, limit + 1}
	}

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list posts by authors: %w", err)
	}

	return trimPage(posts, limit)
}

// trimPage applies the fetch-limit-plus-one convention: if we got more than
// limit rows there is another page and the last kept row becomes the cursor.
func trimPage(posts []model.Post, limit int) ([]model.Post, *string, error) {
	var nextCursor *string
	if len(posts) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}
	return posts, nextCursor, nil
}

// GetRecentByAuthor returns an author's newest posts as (id, timestamp)
// pairs for feed backfill.
func (r *postRepository) GetRecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error) {
	query := `
		SELECT id, created_at FROM posts
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var rows []struct {
		ID        int64        `db:"id"`
		CreatedAt sql.NullTime `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, authorID, limit); err != nil {
		return nil, fmt.Errorf("get recent posts: %w", err)
	}

	scores := make([]cache.PostScore, len(rows))
	for i, row := range rows {
		scores[i] = cache.PostScore{PostID: row.ID, Timestamp: row.CreatedAt.Time.UnixMicro()}
	}
	return scores, nil
}

// GetFeedPostIDs returns the newest posts across the given authors, used to
// warm a cold feed cache.
func (r *postRepository) GetFeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error) {
	if len(authorIDs) == 0 {
		return []cache.PostScore{}, nil
	}

	query := `
		SELECT id, created_at FROM posts
		WHERE user_id = ANY($1) AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var rows []struct {
		ID        int64        `db:"id"`
		CreatedAt sql.NullTime `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(authorIDs), limit); err != nil {
		return nil, fmt.Errorf("get feed post ids: %w", err)
	}

	scores := make([]cache.PostScore, len(rows))
	for i, row := range rows {
		scores[i] = cache.PostScore{PostID: row.ID, Timestamp: row.CreatedAt.Time.UnixMicro()}
	}
	return scores, nil
}

// ToggleLike flips membership in the like set. The insert-then-delete dance
// runs in one transaction with the counter update, so concurrent toggles on
// the same post cannot lose updates.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The post must exist before touching the like set: inserting against
	// an absent post would trip the FK instead of reporting not-found.
	exists, err := postExists(ctx, tx, postID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, model.ErrPostNotFound
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	liked := inserted > 0
	delta := 1
	if !liked {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
		`, postID, userID); err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
		delta = -1
	}

	counter, err := tx.ExecContext(ctx, `
		UPDATE posts SET like_count = like_count + $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`, delta, postID)
	if err != nil {
		return false, fmt.Errorf("update like count: %w", err)
	}
	rows, err := counter.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return false, model.ErrPostNotFound
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return liked, nil
}

// GetLikerIDs returns the post's like set, oldest like first.
func (r *postRepository) GetLikerIDs(ctx context.Context, postID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at ASC, user_id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("get likers: %w", err)
	}
	return ids, nil
}

func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}
