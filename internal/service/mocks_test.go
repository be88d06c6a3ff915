package service

import (
	"context"

	"sociogram/internal/cache"
	"sociogram/internal/model"
	"sociogram/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on the repository INTERFACES, so unit tests swap in mocks
// with per-test function fields instead of hitting a real database.

type mockUserRepository struct {
	createFn                func(ctx context.Context, user *model.User) error
	getByIDFn               func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn         func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn      func(ctx context.Context, username string) (bool, error)
	getSummariesFn          func(ctx context.Context, ids []int64) ([]model.UserSummary, error)
	incrementProfileViewsFn func(ctx context.Context, userID int64) error

	// Track calls for assertions
	createCalls      []*model.User
	profileViewBumps []int64
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.User{ID: id, Username: "user"}, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	summaries := make([]model.UserSummary, len(ids))
	for i, id := range ids {
		summaries[i] = model.UserSummary{ID: id, Username: "user"}
	}
	return summaries, nil
}

func (m *mockUserRepository) IncrementProfileViews(ctx context.Context, userID int64) error {
	m.profileViewBumps = append(m.profileViewBumps, userID)
	if m.incrementProfileViewsFn != nil {
		return m.incrementProfileViewsFn(ctx, userID)
	}
	return nil
}

type mockFriendRepository struct {
	addPairFn      func(ctx context.Context, userID, friendID int64) (bool, error)
	removePairFn   func(ctx context.Context, userID, friendID int64) (bool, error)
	existsFn       func(ctx context.Context, userID, friendID int64) (bool, error)
	getFriendsFn   func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getFriendIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	checkFriendsFn func(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error)
}

func (m *mockFriendRepository) AddPair(ctx context.Context, userID, friendID int64) (bool, error) {
	if m.addPairFn != nil {
		return m.addPairFn(ctx, userID, friendID)
	}
	return true, nil
}

func (m *mockFriendRepository) RemovePair(ctx context.Context, userID, friendID int64) (bool, error) {
	if m.removePairFn != nil {
		return m.removePairFn(ctx, userID, friendID)
	}
	return true, nil
}

func (m *mockFriendRepository) Exists(ctx context.Context, userID, friendID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, friendID)
	}
	return false, nil
}

func (m *mockFriendRepository) GetFriends(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFriendsFn != nil {
		return m.getFriendsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendRepository) GetFriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFriendIDsFn != nil {
		return m.getFriendIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendRepository) CheckFriends(ctx context.Context, userID int64, ids []int64) (map[int64]bool, error) {
	if m.checkFriendsFn != nil {
		return m.checkFriendsFn(ctx, userID, ids)
	}
	return map[int64]bool{}, nil
}

type mockPostRepository struct {
	createFn            func(ctx context.Context, post *model.Post) error
	getByIDFn           func(ctx context.Context, postID int64) (*model.Post, error)
	getByIDsFn          func(ctx context.Context, postIDs []int64) ([]model.Post, error)
	deleteFn            func(ctx context.Context, postID, userID int64) error
	listAllFn           func(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error)
	listByAuthorsFn     func(ctx context.Context, authorIDs []int64, cursor *string, limit int) ([]model.Post, *string, error)
	getRecentByAuthorFn func(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error)
	getFeedPostIDsFn    func(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error)
	toggleLikeFn        func(ctx context.Context, postID, userID int64) (bool, error)
	getLikerIDsFn       func(ctx context.Context, postID int64) ([]int64, error)
	checkLikesFn        func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)

	createCalls []*model.Post
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	m.createCalls = append(m.createCalls, post)
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = 1
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return &model.Post{ID: postID, UserID: 1, Caption: "hello"}, nil
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	posts := make([]model.Post, len(postIDs))
	for i, id := range postIDs {
		posts[i] = model.Post{ID: id, UserID: 1}
	}
	return posts, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) ListAll(ctx context.Context, cursor *string, limit int) ([]model.Post, *string, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) ListByAuthors(ctx context.Context, authorIDs []int64, cursor *string, limit int) ([]model.Post, *string, error) {
	if m.listByAuthorsFn != nil {
		return m.listByAuthorsFn(ctx, authorIDs, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPostRepository) GetRecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error) {
	if m.getRecentByAuthorFn != nil {
		return m.getRecentByAuthorFn(ctx, authorID, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetFeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error) {
	if m.getFeedPostIDsFn != nil {
		return m.getFeedPostIDsFn(ctx, authorIDs, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, postID, userID)
	}
	return true, nil
}

func (m *mockPostRepository) GetLikerIDs(ctx context.Context, postID int64) ([]int64, error) {
	if m.getLikerIDsFn != nil {
		return m.getLikerIDsFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[int64]bool{}, nil
}

type mockCommentRepository struct {
	addFn        func(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
	listByPostFn func(ctx context.Context, postID int64) ([]model.Comment, error)

	addCalls []string
}

func (m *mockCommentRepository) Add(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	m.addCalls = append(m.addCalls, content)
	if m.addFn != nil {
		return m.addFn(ctx, postID, userID, content)
	}
	return &model.Comment{ID: 1, PostID: postID, UserID: userID, Content: content}, nil
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

// =============================================================================
// MOCK PUBLISHER
// =============================================================================

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.FeedEvent) (string, error)

	published []queue.FeedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

// =============================================================================
// MOCK FEED CACHE
// =============================================================================

type mockFeedCache struct {
	addPostFn    func(ctx context.Context, userID, postID int64, timestamp int64) error
	removePostFn func(ctx context.Context, userID, postID int64) error
	getFeedFn    func(ctx context.Context, userID int64, maxScore *float64, limit int) ([]int64, []float64, error)
	warmCacheFn  func(ctx context.Context, userID int64, posts []cache.PostScore) error
	existsFn     func(ctx context.Context, userID int64) (bool, error)

	warmed []int64
}

func (m *mockFeedCache) AddPost(ctx context.Context, userID, postID int64, timestamp int64) error {
	if m.addPostFn != nil {
		return m.addPostFn(ctx, userID, postID, timestamp)
	}
	return nil
}

func (m *mockFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	if m.removePostFn != nil {
		return m.removePostFn(ctx, userID, postID)
	}
	return nil
}

func (m *mockFeedCache) GetFeed(ctx context.Context, userID int64, maxScore *float64, limit int) ([]int64, []float64, error) {
	if m.getFeedFn != nil {
		return m.getFeedFn(ctx, userID, maxScore, limit)
	}
	return nil, nil, nil
}

func (m *mockFeedCache) WarmCache(ctx context.Context, userID int64, posts []cache.PostScore) error {
	m.warmed = append(m.warmed, userID)
	if m.warmCacheFn != nil {
		return m.warmCacheFn(ctx, userID, posts)
	}
	return nil
}

func (m *mockFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID)
	}
	return true, nil
}
