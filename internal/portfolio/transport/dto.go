package transport

import "time"

type UploadItemRequest struct {
	Title       string  `form:"title" validate:"required,max=160"`
	Description *string `form:"description" validate:"omitempty,max=2000"`
}

type ItemResponse struct {
	ID          string     `json:"id"`
	ProviderID  string     `json:"providerId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl"`
	TakenAt     *time.Time `json:"takenAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
}
