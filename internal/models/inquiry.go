package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Inquiry is a contact-form message from a visitor about a listing
type Inquiry struct {
	ID            string        `gorm:"type:varchar(64);primaryKey" bson:"_id" json:"id"`
	PropertyID    string        `gorm:"type:varchar(64);not null;index" bson:"property_id" json:"property_id"`
	PropertyTitle string        `gorm:"type:text" bson:"property_title,omitempty" json:"property_title,omitempty"`
	UserName      string        `gorm:"type:varchar(120);not null" bson:"user_name" json:"user_name"`
	UserEmail     string        `gorm:"type:varchar(190);not null" bson:"user_email" json:"user_email"`
	Message       string        `gorm:"type:text;not null" bson:"message" json:"message"`
	Status        InquiryStatus `gorm:"type:varchar(20);not null;default:'pending';index" bson:"status" json:"status"`
	CreatedAt     time.Time     `gorm:"type:datetime(3);not null;index:idx_inquiries_created_at,sort:desc" bson:"created_at" json:"created_at"`
}

// InquiryStatus tracks whether an admin has answered
type InquiryStatus string

const (
	InquiryStatusPending   InquiryStatus = "pending"
	InquiryStatusResponded InquiryStatus = "responded"
)

// TableName specifies the table name
func (Inquiry) TableName() string {
	return "inquiries"
}

// InquiryDraft is what a visitor submits
type InquiryDraft struct {
	PropertyID    string `json:"property_id"`
	PropertyTitle string `json:"property_title"`
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	Message       string `json:"message"`
}

var ErrInvalidInquiry = errors.New("invalid inquiry")

// Validate checks the required contact fields
func (d *InquiryDraft) Validate() error {
	if strings.TrimSpace(d.PropertyID) == "" {
		return fmt.Errorf("%w: property is required", ErrInvalidInquiry)
	}
	if strings.TrimSpace(d.UserName) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInquiry)
	}
	if _, err := mail.ParseAddress(d.UserEmail); err != nil {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInquiry)
	}
	if strings.TrimSpace(d.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInquiry)
	}
	return nil
}

// ToInquiry builds the pending record the store will persist
func (d *InquiryDraft) ToInquiry(createdAt time.Time) Inquiry {
	return Inquiry{
		PropertyID:    d.PropertyID,
		PropertyTitle: d.PropertyTitle,
		UserName:      strings.TrimSpace(d.UserName),
		UserEmail:     strings.TrimSpace(d.UserEmail),
		Message:       d.Message,
		Status:        InquiryStatusPending,
		CreatedAt:     createdAt,
	}
}
