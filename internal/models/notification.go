package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReply    NotificationType = "REPLY"
	NotificationTypeUpvote   NotificationType = "UPVOTE"
	NotificationTypeDownvote NotificationType = "DOWNVOTE"
)

type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	Recipient   User             `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SenderID    uint             `gorm:"not null;index" json:"sender_id"`
	Sender      User             `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sender"`
	CommentID   *uint            `gorm:"index" json:"comment_id"`
	Comment     *Comment         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comment,omitempty"`
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
