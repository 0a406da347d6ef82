package model

import "time"

// SupportStatus tracks handling of a contact form message.
type SupportStatus string

const (
	SupportNew        SupportStatus = "New"
	SupportInProgress SupportStatus = "InProgress"
	SupportResolved   SupportStatus = "Resolved"
)

// SupportDetails is the public contact form payload.
type SupportDetails struct {
	Name    string `bson:"name" json:"name" binding:"required"`
	Email   string `bson:"email" json:"email" binding:"required,email"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty" binding:"omitempty,phone"`
	Subject string `bson:"subject" json:"subject" binding:"required"`
	Message string `bson:"message" json:"message" binding:"required"`
}

// SupportMessage is stored in the support_messages collection.
type SupportMessage struct {
	StorageID      string `bson:"_id,omitempty" json:"_id,omitempty"`
	ID             string `bson:"id" json:"id"`
	SupportDetails `bson:",inline"`

	Status    SupportStatus `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// SupportStatusUpdate is the body of PATCH /api/contact.
type SupportStatusUpdate struct {
	ID     string        `json:"id" binding:"required"`
	Status SupportStatus `json:"status" binding:"required,oneof=New InProgress Resolved"`
}
