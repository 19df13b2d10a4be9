package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"placescout/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type voteRequest struct {
	Value int `json:"value"` // 1 for upvote, -1 for downvote
}

// Vote applies the toggle state machine to the caller's vote on a comment.
func (h *CommentHandler) Vote(c *gin.Context) {
	user := CurrentUser(c)

	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil {
		Message(c, http.StatusBadRequest, "Invalid comment ID.")
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Message(c, http.StatusBadRequest, "Invalid vote value. Must be 1 or -1.")
		return
	}

	outcome, err := h.comments.CastVote(user.ID, uint(commentID), req.Value)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidVote):
			Message(c, http.StatusBadRequest, "Invalid vote value. Must be 1 or -1.")
		case errors.Is(err, services.ErrCommentNotFound):
			Message(c, http.StatusNotFound, "Comment not found.")
		default:
			zap.L().Error("vote failed",
				zap.Uint("user_id", user.ID),
				zap.Int("comment_id", commentID),
				zap.Error(err))
			Message(c, http.StatusInternalServerError, "Server error")
		}
		return
	}

	status := http.StatusOK
	if outcome == services.VoteCast {
		status = http.StatusCreated
	}
	Message(c, status, outcome.Message())
}
