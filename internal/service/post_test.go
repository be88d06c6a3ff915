package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sociogram/internal/model"
	"sociogram/internal/queue"
)

func TestPostService_Create(t *testing.T) {
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = 10
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := NewPostService(postRepo, &mockCommentRepository{}, &mockUserRepository{}, pub)

	imageURL := "/assets/posts/abc.jpg"
	post, err := svc.Create(context.Background(), 1, "  first post  ", &imageURL, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if post.Caption != "first post" {
		t.Errorf("caption = %q, want trimmed %q", post.Caption, "first post")
	}
	if len(post.Likes) != 0 {
		t.Errorf("new post should start with an empty like set, got %d", len(post.Likes))
	}
	if len(post.Comments) != 0 {
		t.Errorf("new post should start with no comments, got %d", len(post.Comments))
	}
	if post.Author == nil {
		t.Error("created post should carry an author summary")
	}

	if len(pub.published) != 1 || pub.published[0].Type != queue.EventPostCreated {
		t.Errorf("expected one post_created event, got %v", pub.published)
	}
	if pub.published[0].PostID != 10 {
		t.Errorf("event post id = %d, want 10", pub.published[0].PostID)
	}
}

func TestPostService_Create_CaptionValidation(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		wantErr error
	}{
		{name: "empty caption", caption: "", wantErr: model.ErrCaptionMissing},
		{name: "whitespace caption", caption: "   \n\t", wantErr: model.ErrCaptionMissing},
		{name: "too long", caption: strings.Repeat("a", model.MaxPostCaptionLength+1), wantErr: model.ErrCaptionTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := &mockPostRepository{}
			svc := NewPostService(postRepo, &mockCommentRepository{}, &mockUserRepository{}, nil)

			_, err := svc.Create(context.Background(), 1, tt.caption, nil, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(postRepo.createCalls) != 0 {
				t.Error("nothing should be written on validation failure")
			}
		})
	}
}

func TestPostService_Create_UnknownAuthor(t *testing.T) {
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	postRepo := &mockPostRepository{}
	svc := NewPostService(postRepo, &mockCommentRepository{}, userRepo, nil)

	_, err := svc.Create(context.Background(), 404, "hello", nil, nil)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
	if len(postRepo.createCalls) != 0 {
		t.Error("nothing should be written when the author does not resolve")
	}
}

func TestPostService_ToggleLike(t *testing.T) {
	liked := false
	postRepo := &mockPostRepository{
		toggleLikeFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			liked = !liked
			return liked, nil
		},
		getLikerIDsFn: func(ctx context.Context, postID int64) ([]int64, error) {
			if liked {
				return []int64{7}, nil
			}
			return nil, nil
		},
	}
	svc := NewPostService(postRepo, &mockCommentRepository{}, &mockUserRepository{}, nil)

	// First toggle likes
	post, err := svc.ToggleLike(context.Background(), 10, 7)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !post.IsLiked {
		t.Error("post should be liked by the caller after first toggle")
	}
	if len(post.Likes) != 1 || post.Likes[0] != 7 {
		t.Errorf("like set = %v, want [7]", post.Likes)
	}

	// Second toggle restores the prior state
	post, err = svc.ToggleLike(context.Background(), 10, 7)
	if err != nil {
		t.Fatalf("ToggleLike (second): %v", err)
	}
	if post.IsLiked {
		t.Error("post should not be liked after second toggle")
	}
	if len(post.Likes) != 0 {
		t.Errorf("like set = %v, want empty", post.Likes)
	}
}

func TestPostService_ToggleLike_PostNotFound(t *testing.T) {
	postRepo := &mockPostRepository{
		toggleLikeFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			return false, model.ErrPostNotFound
		},
	}
	svc := NewPostService(postRepo, &mockCommentRepository{}, &mockUserRepository{}, nil)

	_, err := svc.ToggleLike(context.Background(), 404, 1)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestPostService_AddComment(t *testing.T) {
	var comments []model.Comment
	commentRepo := &mockCommentRepository{
		addFn: func(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
			c := model.Comment{ID: int64(len(comments) + 1), PostID: postID, UserID: userID, Content: content}
			comments = append(comments, c)
			return &c, nil
		},
		listByPostFn: func(ctx context.Context, postID int64) ([]model.Comment, error) {
			return comments, nil
		},
	}
	svc := NewPostService(&mockPostRepository{}, commentRepo, &mockUserRepository{}, nil)

	post, err := svc.AddComment(context.Background(), 10, 7, "nice shot")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(post.Comments) != 1 || post.Comments[0].Content != "nice shot" {
		t.Errorf("comments = %v, want single 'nice shot'", post.Comments)
	}

	// Append-only: a second comment lands after the first
	post, err = svc.AddComment(context.Background(), 10, 8, "agreed")
	if err != nil {
		t.Fatalf("AddComment (second): %v", err)
	}
	if len(post.Comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(post.Comments))
	}
	if post.Comments[0].Content != "nice shot" || post.Comments[1].Content != "agreed" {
		t.Errorf("comments out of append order: %v", post.Comments)
	}
}

func TestPostService_AddComment_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty", content: "", wantErr: model.ErrContentRequired},
		{name: "whitespace", content: "  ", wantErr: model.ErrContentRequired},
		{name: "too long", content: strings.Repeat("x", model.MaxCommentLength+1), wantErr: model.ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commentRepo := &mockCommentRepository{}
			svc := NewPostService(&mockPostRepository{}, commentRepo, &mockUserRepository{}, nil)

			_, err := svc.AddComment(context.Background(), 10, 7, tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(commentRepo.addCalls) != 0 {
				t.Error("nothing should be written on validation failure")
			}
		})
	}
}

func TestPostService_AddComment_PostNotFound(t *testing.T) {
	commentRepo := &mockCommentRepository{
		addFn: func(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
			return nil, model.ErrPostNotFound
		},
	}
	svc := NewPostService(&mockPostRepository{}, commentRepo, &mockUserRepository{}, nil)

	_, err := svc.AddComment(context.Background(), 404, 7, "hello")
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestPostService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		deleteErr  error
		wantErr    error
		wantEvents int
	}{
		{name: "owner deletes", deleteErr: nil, wantErr: nil, wantEvents: 1},
		{name: "not the owner", deleteErr: model.ErrNotPostOwner, wantErr: model.ErrNotPostOwner, wantEvents: 0},
		{name: "post missing", deleteErr: model.ErrPostNotFound, wantErr: model.ErrPostNotFound, wantEvents: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := &mockPostRepository{
				deleteFn: func(ctx context.Context, postID, userID int64) error {
					return tt.deleteErr
				},
			}
			pub := &mockPublisher{}
			svc := NewPostService(postRepo, &mockCommentRepository{}, &mockUserRepository{}, pub)

			err := svc.Delete(context.Background(), 10, 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(pub.published) != tt.wantEvents {
				t.Errorf("published %d events, want %d", len(pub.published), tt.wantEvents)
			}
			if tt.wantEvents == 1 && pub.published[0].Type != queue.EventPostDeleted {
				t.Errorf("event type = %q, want %q", pub.published[0].Type, queue.EventPostDeleted)
			}
		})
	}
}
