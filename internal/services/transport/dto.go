package transport

import "time"

type CreateServiceRequest struct {
	Title              string   `json:"title" validate:"required,max=160"`
	Description        string   `json:"description" validate:"required,max=4000"`
	Category           string   `json:"category" validate:"required"`
	ProjectType        string   `json:"projectType" validate:"required,oneof=hourly daily project"`
	MinimumChargeCents int64    `json:"minimumChargeCents" validate:"required,gt=0"`
	DailyRateCents     *int64   `json:"dailyRateCents" validate:"omitempty,gt=0"`
	Duration           *string  `json:"duration" validate:"omitempty,max=120"`
	Location           *string  `json:"location" validate:"omitempty,max=120"`
	Availability       *string  `json:"availability" validate:"omitempty,max=240"`
	Includes           []string `json:"includes" validate:"omitempty,dive,max=160"`
	AdditionalInfo     *string  `json:"additionalInfo" validate:"omitempty,max=2000"`
}

type UpdateServiceRequest struct {
	Title              *string  `json:"title" validate:"omitempty,max=160"`
	Description        *string  `json:"description" validate:"omitempty,max=4000"`
	Category           *string  `json:"category"`
	ProjectType        *string  `json:"projectType" validate:"omitempty,oneof=hourly daily project"`
	MinimumChargeCents *int64   `json:"minimumChargeCents" validate:"omitempty,gt=0"`
	DailyRateCents     *int64   `json:"dailyRateCents" validate:"omitempty,gt=0"`
	Duration           *string  `json:"duration" validate:"omitempty,max=120"`
	Location           *string  `json:"location" validate:"omitempty,max=120"`
	Availability       *string  `json:"availability" validate:"omitempty,max=240"`
	Includes           []string `json:"includes" validate:"omitempty,dive,max=160"`
	AdditionalInfo     *string  `json:"additionalInfo" validate:"omitempty,max=2000"`
}

type ListServicesRequest struct {
	Category string `form:"category"`
	Location string `form:"location"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type ServiceResponse struct {
	ID                 string    `json:"id"`
	ProviderID         string    `json:"providerId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	ProjectType        string    `json:"projectType"`
	MinimumChargeCents int64     `json:"minimumChargeCents"`
	DailyRateCents     *int64    `json:"dailyRateCents,omitempty"`
	Duration           *string   `json:"duration,omitempty"`
	Location           *string   `json:"location,omitempty"`
	Availability       *string   `json:"availability,omitempty"`
	Includes           []string  `json:"includes"`
	AdditionalInfo     *string   `json:"additionalInfo,omitempty"`
	ImageURL           *string   `json:"imageUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type ServiceListResponse struct {
	Items      []ServiceResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type UploadImageResponse struct {
	ImageURL string `json:"imageUrl"`
}
