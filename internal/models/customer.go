package models

import "time"

// Customer is a deduplicated buyer record maintained as a side effect of
// sales. Identity is (name_key, phone_digits): normalized lowercase name
// plus the digits of the phone number, either of which may be empty.
type Customer struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	NameKey        string     `json:"-"`
	Phone          *string    `json:"phone"`
	PhoneDigits    string     `json:"-"`
	Email          *string    `json:"email"`
	Address        *string    `json:"address"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastPurchaseAt *time.Time `json:"last_purchase_at"`
}

// CustomerUpsert is the merge payload applied on every sale.
type CustomerUpsert struct {
	Name           string
	Phone          string
	Address        string
	LastPurchaseAt string // YYYY-MM-DD, empty means now
}
