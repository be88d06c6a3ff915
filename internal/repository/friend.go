package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sociogram/internal/model"
)

type friendRepository struct {
	db *sqlx.DB
}

func NewFriendRepository(db *sqlx.DB) FriendRepository {
	return &friendRepository{db: db}
}

// AddPair writes both directions of the edge in one transaction so the two
// friend lists cannot diverge. ON CONFLICT keeps the operation idempotent
// under concurrent requests.
func (r *friendRepository) AddPair(ctx context.Context, userID, friendID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, userID, friendID)
	if err != nil {
		return false, fmt.Errorf("failed to create friendship: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		if err := r.incrementFriendCounts(ctx, tx, userID, friendID, 1); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return rows > 0, nil
}

// RemovePair deletes both directions in one transaction. Returns false if
// there was no edge, so removal stays idempotent.
func (r *friendRepository) RemovePair(ctx context.Context, userID, friendID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	result, err := tx.ExecContext(ctx, query, userID, friendID)
	if err != nil {
		return false, fmt.Errorf("failed to delete friendship: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		if err := r.incrementFriendCounts(ctx, tx, userID, friendID, -1); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return rows > 0, nil
}

func (r *friendRepository) incrementFriendCounts(ctx context.Context, tx *sqlx.Tx, userID, friendID int64, delta int) error {
	query := `UPDATE users SET friend_count = friend_count + $1 WHERE id IN ($2, $3)`
	if _, err := tx.ExecContext(ctx, query, delta, userID, friendID); err != nil {
		return fmt.Errorf("failed to update friend counts: %w", err)
	}
	return nil
}

func (r *friendRepository) Exists(ctx context.Context, userID, friendID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, friendID)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship existence: %w", err)
	}
	return exists, nil
}

// GetFriends resolves the user's friend list to profile projections, ordered
// by when the edge was created. Edges whose target no longer resolves drop
// out of the join.
func (r *friendRepository) GetFriends(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY f.created_at ASC, u.id ASC
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}

	return users, nil
}

func (r *friendRepository) GetFriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT friend_id FROM friendships WHERE user_id = $1`

	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend ids: %w", err)
	}

	return ids, nil
}

func (r *friendRepository) CheckFriends(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	if len(ids) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT friend_id FROM friendships WHERE user_id = $1 AND friend_id = ANY($2)`
	var friendIDs []int64
	err := r.db.SelectContext(ctx, &friendIDs, query, userID, pq.Array(ids))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check friendships: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range ids {
		result[id] = false
	}
	for _, id := range friendIDs {
		result[id] = true
	}

	return result, nil
}
