package transport

import "time"

// CreateLeadRequest is a customer inquiry against a listing. Contact fields
// matter only when the caller is not signed in; signed-in inquiries are
// identified by their account.
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"omitempty,max=160"`
	Email   string `json:"email" validate:"omitempty,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Message string `json:"message" validate:"required,max=4000"`
}

type ListLeadsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

type LeadResponse struct {
	ID            string     `json:"id"`
	ServiceID     string     `json:"serviceId"`
	ProviderID    string     `json:"providerId"`
	CustomerID    *string    `json:"customerId,omitempty"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail *string    `json:"customerEmail,omitempty"`
	CustomerPhone *string    `json:"customerPhone,omitempty"`
	IsAnonymous   bool       `json:"isAnonymous"`
	Status        string     `json:"status"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	ConvertedAt   *time.Time `json:"convertedAt,omitempty"`
	ConvertedBy   *string    `json:"convertedBy,omitempty"`
	IsBilled      bool       `json:"isBilled"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type LeadListItem struct {
	LeadResponse
	ServiceTitle    string `json:"serviceTitle"`
	ServiceCategory string `json:"serviceCategory"`
}

type LeadListResponse struct {
	Items      []LeadListItem `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
