package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"sociogram/internal/cache"
	"sociogram/internal/model"
	"sociogram/internal/repository"
)

const (
	// FeedDefaultLimit is the default number of posts per page
	FeedDefaultLimit = 10

	// FeedMaxLimit is the maximum number of posts per page
	FeedMaxLimit = 50

	// CacheWarmLimit is the max posts to fetch when warming a cold cache
	CacheWarmLimit = 500
)

// FeedService assembles feeds: every post, or posts restricted to a user's
// friend circle. The friends scope is served from a Redis sorted-set cache
// when one is wired; the database path stays authoritative and is the
// fallback when the cache is absent or cold and empty.
type FeedService struct {
	feedCache  cache.FeedCache // nil disables caching
	postRepo   repository.PostRepository
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

func NewFeedService(
	feedCache cache.FeedCache,
	postRepo repository.PostRepository,
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
) *FeedService {
	return &FeedService{
		feedCache:  feedCache,
		postRepo:   postRepo,
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// ListAll pages every post, most recent first with a deterministic tiebreak.
func (s *FeedService) ListAll(ctx context.Context, viewerID int64, cursor *string, limit int) (*model.FeedResponse, error) {
	limit = clampLimit(limit)

	posts, nextCursor, err := s.postRepo.ListAll(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	feedPosts, err := s.hydratePosts(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}

	return &model.FeedResponse{
		Posts:      feedPosts,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// FriendsFeed pages posts authored by the user's friends, most recent
// first. The user's own posts are not in scope; the friend list alone
// defines the author set.
//
// Cache flow: check existence, warm on miss, read post ids from the sorted
// set, hydrate from the database. Any cache failure falls back to the
// database path rather than failing the request.
func (s *FeedService) FriendsFeed(ctx context.Context, userID int64, viewerID int64, cursor *string, limit int) (*model.FeedResponse, error) {
	limit = clampLimit(limit)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if s.feedCache != nil {
		resp, err := s.friendsFeedFromCache(ctx, userID, viewerID, cursor, limit)
		if err == nil {
			return resp, nil
		}
		log.Printf("[FeedService] Cache path failed for user=%d, falling back to DB: %v", userID, err)
	}

	return s.friendsFeedFromDB(ctx, userID, viewerID, cursor, limit)
}

func (s *FeedService) friendsFeedFromCache(ctx context.Context, userID, viewerID int64, cursor *string, limit int) (*model.FeedResponse, error) {
	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.warmCache(ctx, userID); err != nil {
			return nil, err
		}
	}

	var cursorScore *float64
	if cursor != nil {
		score, _, err := parseFeedCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		cursorScore = &score
	}

	postIDs, scores, err := s.feedCache.GetFeed(ctx, userID, cursorScore, limit)
	if err != nil {
		return nil, err
	}

	if len(postIDs) == 0 {
		return &model.FeedResponse{Posts: []model.FeedPost{}}, nil
	}

	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	feedPosts, err := s.hydratePosts(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}

	var nextCursor *string
	hasMore := len(feedPosts) == limit
	if hasMore && len(scores) > 0 {
		last := feedPosts[len(feedPosts)-1]
		c := formatFeedCursor(scores[len(scores)-1], last.ID)
		nextCursor = &c
	}

	return &model.FeedResponse{
		Posts:      feedPosts,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (s *FeedService) friendsFeedFromDB(ctx context.Context, userID, viewerID int64, cursor *string, limit int) (*model.FeedResponse, error) {
	authorIDs, err := s.friendRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, nextCursor, err := s.postRepo.ListByAuthors(ctx, authorIDs, cursor, limit)
	if err != nil {
		return nil, err
	}

	feedPosts, err := s.hydratePosts(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}

	return &model.FeedResponse{
		Posts:      feedPosts,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// warmCache populates the user's feed cache from the database.
func (s *FeedService) warmCache(ctx context.Context, userID int64) error {
	authorIDs, err := s.friendRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("get friend ids: %w", err)
	}

	posts, err := s.postRepo.GetFeedPostIDs(ctx, authorIDs, CacheWarmLimit)
	if err != nil {
		return fmt.Errorf("get feed post ids: %w", err)
	}

	if len(posts) == 0 {
		return nil
	}

	if err := s.feedCache.WarmCache(ctx, userID, posts); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] Cache warmed: user=%d posts=%d", userID, len(posts))
	return nil
}

// hydratePosts enriches raw posts with author summaries and the viewer's
// like status. Authors are fetched in one batch and likes checked in one
// batch to avoid N+1 queries.
func (s *FeedService) hydratePosts(ctx context.Context, viewerID int64, posts []model.Post) ([]model.FeedPost, error) {
	if len(posts) == 0 {
		return []model.FeedPost{}, nil
	}

	authorIDSet := make(map[int64]struct{})
	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		authorIDSet[p.UserID] = struct{}{}
		postIDs[i] = p.ID
	}
	authorIDs := make([]int64, 0, len(authorIDSet))
	for id := range authorIDSet {
		authorIDs = append(authorIDs, id)
	}

	summaries, err := s.userRepo.GetSummaries(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("get authors: %w", err)
	}
	authors := make(map[int64]model.UserSummary, len(summaries))
	for _, u := range summaries {
		authors[u.ID] = u
	}

	friendStatus, err := s.friendRepo.CheckFriends(ctx, viewerID, authorIDs)
	if err != nil {
		log.Printf("[FeedService] Failed to check friendships: %v", err)
	}

	likeStatus, err := s.postRepo.CheckLikes(ctx, viewerID, postIDs)
	if err != nil {
		log.Printf("[FeedService] Failed to check likes: %v", err)
	}

	feedPosts := make([]model.FeedPost, len(posts))
	for i, p := range posts {
		author := authors[p.UserID]
		if friendStatus != nil {
			author.IsFriend = friendStatus[p.UserID]
		}
		if likeStatus != nil {
			p.IsLiked = likeStatus[p.ID]
		}
		feedPosts[i] = model.FeedPost{
			Post:   p,
			Author: author,
		}
	}

	return feedPosts, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		return FeedMaxLimit
	}
	return limit
}

// parseFeedCursor parses the "id:timestamp" cursor used by the cache path.
func parseFeedCursor(cursor string) (float64, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cursor format, expected id:timestamp")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid post id in cursor: %w", err)
	}

	score, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	return score, id, nil
}

func formatFeedCursor(score float64, id int64) string {
	return fmt.Sprintf("%d:%.0f", id, score)
}
