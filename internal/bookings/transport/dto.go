package transport

import "time"

type CreateBookingRequest struct {
	ServiceID    string    `json:"serviceId" validate:"required,uuid"`
	ScheduledFor time.Time `json:"scheduledFor" validate:"required"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

type AddPaymentMethodRequest struct {
	Brand     string `json:"brand" validate:"required,max=40"`
	Last4     string `json:"last4" validate:"required,len=4,numeric"`
	ExpMonth  int    `json:"expMonth" validate:"required,min=1,max=12"`
	ExpYear   int    `json:"expYear" validate:"required,min=2024,max=2100"`
	IsDefault bool   `json:"isDefault"`
}

type BookingResponse struct {
	ID              string     `json:"id"`
	ServiceID       string     `json:"serviceId"`
	CustomerID      string     `json:"customerId"`
	ProviderID      string     `json:"providerId"`
	ScheduledFor    time.Time  `json:"scheduledFor"`
	AmountCents     int64      `json:"amountCents"`
	Status          string     `json:"status"`
	PaymentIntentID *string    `json:"paymentIntentId,omitempty"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type BookingListItem struct {
	BookingResponse
	ServiceTitle string `json:"serviceTitle"`
}

type BookingListResponse struct {
	Items []BookingListItem `json:"items"`
}

type PaymentIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	AmountCents     int64  `json:"amountCents"`
}

type PaymentMethodResponse struct {
	ID        string    `json:"id"`
	Brand     string    `json:"brand"`
	Last4     string    `json:"last4"`
	ExpMonth  int       `json:"expMonth"`
	ExpYear   int       `json:"expYear"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentMethodListResponse struct {
	Items []PaymentMethodResponse `json:"items"`
}
