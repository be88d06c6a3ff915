package service

import (
	"context"
	"log"

	"sociogram/internal/model"
	"sociogram/internal/queue"
	"sociogram/internal/repository"
)

// FriendService manages the symmetric friendship graph. Both directions of
// an edge are written in one repository transaction, so the two friend lists
// cannot diverge.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFriendService(
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// AddFriend creates the edge between two users. Idempotent: adding an
// existing friendship succeeds without effect or event.
func (s *FriendService) AddFriend(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return model.ErrCannotFriendSelf
	}

	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return err
	}

	added, err := s.friendRepo.AddPair(ctx, userID, friendID)
	if err != nil {
		return err
	}

	// Publish after commit only when the edge is new
	if added && s.publisher != nil {
		event := queue.NewFriendAddedEvent(userID, friendID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[FriendService] Failed to publish FriendAdded: user=%d friend=%d err=%v",
				userID, friendID, err)
		}
	}

	return nil
}

// RemoveFriend deletes the edge between two users. Idempotent: removing a
// non-existent friendship succeeds without effect or event.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return err
	}

	removed, err := s.friendRepo.RemovePair(ctx, userID, friendID)
	if err != nil {
		return err
	}

	if removed && s.publisher != nil {
		event := queue.NewFriendRemovedEvent(userID, friendID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[FriendService] Failed to publish FriendRemoved: user=%d friend=%d err=%v",
				userID, friendID, err)
		}
	}

	return nil
}

// ToggleFriend flips the friendship state and reports the new membership.
func (s *FriendService) ToggleFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	if userID == friendID {
		return false, model.ErrCannotFriendSelf
	}

	exists, err := s.friendRepo.Exists(ctx, userID, friendID)
	if err != nil {
		return false, err
	}

	if exists {
		return false, s.RemoveFriend(ctx, userID, friendID)
	}
	return true, s.AddFriend(ctx, userID, friendID)
}

// GetFriends returns the user's friend list as profile projections, in edge
// creation order. Stale identifiers drop out of the resolution rather than
// erroring. When a viewer is present each entry carries whether the viewer
// is friends with them, checked in one batch query.
func (s *FriendService) GetFriends(ctx context.Context, userID int64, viewerID *int64) (*model.FriendListResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	users, err := s.friendRepo.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && len(users) > 0 {
		ids := make([]int64, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}

		friendMap, err := s.friendRepo.CheckFriends(ctx, *viewerID, ids)
		if err == nil {
			for i := range users {
				users[i].IsFriend = friendMap[users[i].ID]
			}
		}
	}

	return &model.FriendListResponse{Users: users}, nil
}
