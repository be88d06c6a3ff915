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

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// ListAll handles GET /posts
// Returns the global feed, newest first.
//
// Query params:
//   - cursor: optional, compound cursor for pagination (format: "id:timestamp")
//   - limit: optional, number of posts per page (default 10, max 50)
func (h *FeedHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	cursor, limit, err := parseFeedParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	feed, err := h.feedService.ListAll(r.Context(), viewerID, cursor, limit)
	if err != nil {
		log.Printf("[ERROR] ListAll handler: viewer=%d err=%v", viewerID, err)
		httputil.WriteInternalError(w, "Failed to get posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}

// FriendsFeed handles GET /posts/{userId}
// Returns posts by the named user and their friends, newest first.
func (h *FeedHandler) FriendsFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	userIDStr := chi.URLParam(r, "userId")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	cursor, limit, err := parseFeedParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	feed, err := h.feedService.FriendsFeed(r.Context(), userID, viewerID, cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] FriendsFeed handler: user=%d viewer=%d err=%v", userID, viewerID, err)
		httputil.WriteInternalError(w, "Failed to get posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}

// parseFeedParams extracts the optional cursor and limit query parameters.
func parseFeedParams(r *http.Request) (*string, int, error) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	limit := service.FeedDefaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return nil, 0, errors.New("invalid limit")
		}
		limit = parsed
	}

	return cursor, limit, nil
}
