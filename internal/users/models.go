package users

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a marketplace account. The password hash never leaves this
// package through JSON.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Phone          *string   `json:"phone,omitempty"`
	Street         *string   `json:"street,omitempty"`
	City           *string   `json:"city,omitempty"`
	State          *string   `json:"state,omitempty"`
	ZipCode        *string   `json:"zipCode,omitempty"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	Lat            *float64  `json:"lat,omitempty"`
	Lng            *float64  `json:"lng,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser is the registration request body.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=consumer farmer admin"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

// Login is the login request body.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FarmerProfile is the public farm page attached to a farmer account.
type FarmerProfile struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	FarmName        string          `json:"farmName"`
	FarmDescription *string         `json:"farmDescription,omitempty"`
	FarmLocation    *string         `json:"farmLocation,omitempty"`
	YearsFarming    *int            `json:"yearsFarming,omitempty"`
	Certification   *string         `json:"certification,omitempty"`
	DeliveryOptions []string        `json:"deliveryOptions"`
	PaymentOptions  []string        `json:"paymentOptions"`
	IsVerified      bool            `json:"isVerified"`
	Rating          decimal.Decimal `json:"rating"`
	TotalRatings    int             `json:"totalRatings"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// UpdateFarmerProfile is the create-or-update request body for farm pages.
type UpdateFarmerProfile struct {
	FarmName        string   `json:"farmName" validate:"required"`
	FarmDescription string   `json:"farmDescription"`
	FarmLocation    string   `json:"farmLocation"`
	YearsFarming    *int     `json:"yearsFarming"`
	Certification   string   `json:"certification"`
	DeliveryOptions []string `json:"deliveryOptions"`
	PaymentOptions  []string `json:"paymentOptions"`
}
