package service

import (
	"context"
	"log"
	"strings"

	"sociogram/internal/model"
	"sociogram/internal/queue"
	"sociogram/internal/repository"
)

// PostService handles post creation, the like toggle and comment append.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create stores a new post with an empty like set and comment list. The
// author must resolve; nothing is written otherwise.
func (s *PostService) Create(ctx context.Context, authorID int64, caption string, imageURL, imageKey *string) (*model.Post, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil, model.ErrCaptionMissing
	}
	if len(caption) > model.MaxPostCaptionLength {
		return nil, model.ErrCaptionTooLong
	}

	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:   authorID,
		Caption:  caption,
		ImageURL: imageURL,
		ImageKey: imageKey,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Publish after commit so workers never see a post that rolled back
	if s.publisher != nil {
		event := queue.NewPostCreatedEvent(post.ID, authorID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[PostService] Failed to publish PostCreated: post=%d err=%v", post.ID, err)
		}
	}

	return s.hydrate(ctx, post)
}

// ToggleLike flips the caller's membership in the post's like set. Pure
// toggle: applying it twice returns the like set to its prior state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID int64) (*model.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.ToggleLike(ctx, postID, userID); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, postID, &userID)
}

// AddComment appends to the post's comment list. Append-only: comments are
// never edited or removed here.
func (s *PostService) AddComment(ctx context.Context, postID, authorID int64, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.Add(ctx, postID, authorID, content); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, postID, &authorID)
}

// Delete soft-deletes a post. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	if err := s.postRepo.Delete(ctx, postID, userID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewPostDeletedEvent(postID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[PostService] Failed to publish PostDeleted: post=%d err=%v", postID, err)
		}
	}

	return nil
}

// GetByID returns a post hydrated with author, like set and comments.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.hydrateWithViewer(ctx, post, viewerID)
}

func (s *PostService) hydrate(ctx context.Context, post *model.Post) (*model.Post, error) {
	return s.hydrateWithViewer(ctx, post, nil)
}

func (s *PostService) hydrateWithViewer(ctx context.Context, post *model.Post, viewerID *int64) (*model.Post, error) {
	if author, err := s.userRepo.GetByID(ctx, post.UserID); err == nil {
		post.Author = &model.UserSummary{
			ID:          author.ID,
			Username:    author.Username,
			DisplayName: author.DisplayName,
			AvatarURL:   author.AvatarURL,
		}
	}

	likes, err := s.postRepo.GetLikerIDs(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Likes = likes

	if viewerID != nil {
		for _, id := range likes {
			if id == *viewerID {
				post.IsLiked = true
				break
			}
		}
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Comments = comments

	return post, nil
}
