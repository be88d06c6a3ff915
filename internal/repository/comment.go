package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sociogram/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Add appends a comment and bumps the post's comment_count in one
// transaction. The counter update doubles as the existence check.
func (r *commentRepository) Add(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	counter, err := tx.ExecContext(ctx, `
		UPDATE posts SET comment_count = comment_count + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("update comment count: %w", err)
	}
	rows, err := counter.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, model.ErrPostNotFound
	}

	query := `
		INSERT INTO post_comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, content, created_at
	`
	var comment model.Comment
	if err := tx.GetContext(ctx, &comment, query, postID, userID, content); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &comment, nil
}

// ListByPost returns a post's comments in append order with authors joined.
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id as "author.id", u.username as "author.username",
		       u.display_name as "author.display_name", u.avatar_url as "author.avatar_url"
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`

	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}
