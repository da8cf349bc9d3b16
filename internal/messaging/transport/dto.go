package transport

import "time"

type SendMessageRequest struct {
	RecipientID string  `json:"recipientId" validate:"required,uuid"`
	LeadID      *string `json:"leadId" validate:"omitempty,uuid"`
	Content     string  `json:"content" validate:"required,max=4000"`
}

type MessageResponse struct {
	ID          string     `json:"id"`
	SenderID    *string    `json:"senderId,omitempty"`
	RecipientID string     `json:"recipientId"`
	LeadID      *string    `json:"leadId,omitempty"`
	Content     string     `json:"content"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	LeadStatus  *string    `json:"leadStatus,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ConversationResponse is one inbox row. Anonymous lead inquiries have no
// counterpart account; they are keyed by the lead instead.
type ConversationResponse struct {
	CounterpartID   *string         `json:"counterpartId,omitempty"`
	CounterpartName string          `json:"counterpartName"`
	LeadID          *string         `json:"leadId,omitempty"`
	LeadStatus      *string         `json:"leadStatus,omitempty"`
	IsAnonymous     bool            `json:"isAnonymous"`
	LastMessage     MessageResponse `json:"lastMessage"`
	UnreadCount     int             `json:"unreadCount"`
}

type ConversationListResponse struct {
	Items []ConversationResponse `json:"items"`
}

type ThreadResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type MarkReadResponse struct {
	MarkedRead int64 `json:"markedRead"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
