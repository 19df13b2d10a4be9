package services

import (
	"errors"
	"sort"
	"strings"

	"placescout/internal/models"
	"placescout/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrEmptyContent        = errors.New("comment content cannot be empty")
	ErrInvalidVote         = errors.New("vote value must be 1 or -1")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrParentNotFound      = errors.New("parent comment not found")
	ErrParentPlaceMismatch = errors.New("parent comment belongs to a different place")
)

// VoteOutcome reports which transition a CastVote call performed.
type VoteOutcome int

const (
	VoteCast VoteOutcome = iota
	VoteUpdated
	VoteRemoved
)

func (o VoteOutcome) Message() string {
	switch o {
	case VoteCast:
		return "Vote cast."
	case VoteUpdated:
		return "Vote updated."
	default:
		return "Vote removed."
	}
}

// CommentService owns comment submission, the vote toggle and tree
// assembly. Persistence goes through the injected gorm handle; notification
// delivery through the injected sink.
type CommentService struct {
	db       *gorm.DB
	notifier NotificationSink
}

func NewCommentService(db *gorm.DB, notifier NotificationSink) *CommentService {
	return &CommentService{db: db, notifier: notifier}
}

// Submit creates a comment on a place, optionally as a reply. The parent
// must exist and belong to the same place. The parent's author gets a REPLY
// notification unless they wrote the reply themselves.
func (s *CommentService) Submit(userID, placeID uint, content string, parentID *uint) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var parent *models.Comment
	if parentID != nil {
		var p models.Comment
		if err := s.db.First(&p, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if p.PlaceID != placeID {
			return nil, ErrParentPlaceMismatch
		}
		parent = &p
	}

	comment := models.Comment{
		PlaceID:  placeID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	comment.ContentHTML = utils.RenderMarkdown(comment.Content)
	comment.Replies = []*models.Comment{}

	if parent != nil && parent.UserID != userID {
		s.notifier.Notify(parent.UserID, userID, &comment.ID, models.NotificationTypeReply)
	}
	return &comment, nil
}

// CastVote applies one step of the toggle state machine for (userID,
// commentID): no vote + v inserts, same polarity deletes, opposite polarity
// updates in place. The comment's author is notified on cast and update,
// never on removal.
func (s *CommentService) CastVote(userID, commentID uint, value int) (VoteOutcome, error) {
	if value != 1 && value != -1 {
		return 0, ErrInvalidVote
	}

	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCommentNotFound
		}
		return 0, err
	}

	outcome, err := s.toggleVote(userID, commentID, value)
	if err != nil {
		return 0, err
	}

	if outcome != VoteRemoved && comment.UserID != userID {
		typ := models.NotificationTypeUpvote
		if value == -1 {
			typ = models.NotificationTypeDownvote
		}
		cid := commentID
		s.notifier.Notify(comment.UserID, userID, &cid, typ)
	}
	return outcome, nil
}

func (s *CommentService) toggleVote(userID, commentID uint, value int) (VoteOutcome, error) {
	var outcome VoteOutcome
	apply := func(tx *gorm.DB) error {
		var existing models.Vote
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: userID, CommentID: commentID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			outcome = VoteCast
		case err != nil:
			return err
		case existing.Value == value:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			outcome = VoteRemoved
		default:
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return err
			}
			outcome = VoteUpdated
		}
		return nil
	}

	err := s.db.Transaction(apply)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the insert race against a concurrent vote for the same
		// pair; re-read and apply the correct transition.
		err = s.db.Transaction(apply)
	}
	return outcome, err
}

// Tree loads all comments and votes for a place and returns the
// score-ordered reply forest. viewerID scopes user_vote; zero means
// anonymous.
func (s *CommentService) Tree(placeID, viewerID uint) ([]*models.Comment, error) {
	var comments []models.Comment
	if err := s.db.Preload("User").
		Where("place_id = ?", placeID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []*models.Comment{}, nil
	}

	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}
	var votes []models.Vote
	if err := s.db.Where("comment_id IN ?", ids).Find(&votes).Error; err != nil {
		return nil, err
	}

	return BuildTree(comments, votes, viewerID), nil
}

// BuildTree assembles the reply forest from flat rows ordered by creation
// time. Each node is attached at most once via an id-indexed map, so cyclic
// parent data cannot loop; a node whose parent is missing from the set (a
// stale reply to a deleted comment) is dropped rather than promoted.
func BuildTree(comments []models.Comment, votes []models.Vote, viewerID uint) []*models.Comment {
	nodes := make(map[uint]*models.Comment, len(comments))
	ordered := make([]*models.Comment, 0, len(comments))
	for i := range comments {
		c := comments[i]
		c.Replies = []*models.Comment{}
		c.ContentHTML = utils.RenderMarkdown(c.Content)
		nodes[c.ID] = &c
		ordered = append(ordered, &c)
	}

	for _, v := range votes {
		node, ok := nodes[v.CommentID]
		if !ok {
			continue
		}
		node.Score += v.Value
		if viewerID != 0 && v.UserID == viewerID {
			val := v.Value
			node.UserVote = &val
		}
	}

	roots := make([]*models.Comment, 0, len(ordered))
	for _, node := range ordered {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*node.ParentID]
		if !ok || parent == node {
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	// Roots are ranked by score; equal scores show the newer comment
	// first, matching the storage fetch the SPA originally consumed.
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].Score != roots[j].Score {
			return roots[i].Score > roots[j].Score
		}
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	return roots
}
