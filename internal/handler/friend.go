package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sociogram/internal/httputil"
	"sociogram/internal/model"
	"sociogram/internal/service"
	"sociogram/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// GetFriends lists a user's friends, with is_friend computed for the viewer.
// GET /users/{id}/friends
func (h *FriendHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	friends, err := h.friendService.GetFriends(r.Context(), userID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] GetFriends handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get friends")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, friends)
}

// Toggle adds the friendship if absent, removes it if present, and returns
// the caller's updated friend list. The path user must match the token user.
// PATCH /users/{id}/{friendId}
func (h *FriendHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	authUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	userIDStr := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	friendIDStr := chi.URLParam(r, "friendId")
	friendID, err := strconv.ParseInt(friendIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid friend ID")
		return
	}

	if userID != authUserID {
		httputil.WriteForbidden(w, "Cannot modify another user's friends")
		return
	}

	added, err := h.friendService.ToggleFriend(r.Context(), userID, friendID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFriendSelf):
			httputil.WriteBadRequest(w, "Cannot friend yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Toggle handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update friendship")
		}
		return
	}

	friends, err := h.friendService.GetFriends(r.Context(), userID, &authUserID)
	if err != nil {
		log.Printf("[ERROR] Toggle handler: reload friends: %v", err)
		httputil.WriteInternalError(w, "Failed to load friends")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ToggleFriendResponse{
		Added: added,
		Users: friends.Users,
	})
}
