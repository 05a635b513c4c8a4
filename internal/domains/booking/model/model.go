package model

import (
	"confbook/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldUserID          = "user_id"
	FieldConferenceID    = "conference_id"
	FieldStatus          = "status"
	FieldJustification   = "justification"
	FieldNotes           = "notes"
	FieldApprovedBy      = "approved_by"
	FieldApprovedAt      = "approved_at"
	FieldRejectionReason = "rejection_reason"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Booking struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	ConferenceID    string     `db:"conference_id"`
	Status          string     `db:"status"`
	Justification   string     `db:"justification"`
	Notes           string     `db:"notes"`
	ApprovedBy      *string    `db:"approved_by"`
	ApprovedAt      *time.Time `db:"approved_at"`
	RejectionReason string     `db:"rejection_reason"`

	UserEmail       string  `db:"user_email"       table:"users"       column:"email"`
	UserName        string  `db:"user_name"        table:"users"       column:"full_name"`
	UserDepartment  string  `db:"user_department"  table:"users"       column:"department"`
	ConferenceTitle string  `db:"conference_title" table:"conferences" column:"title"`
	ConferencePrice float64 `db:"conference_price" table:"conferences" column:"price"`
	ApproverEmail   *string `db:"approver_email"   table:"approvers"   column:"email"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return `JOIN users ON users.id = bookings.user_id
		JOIN conferences ON conferences.id = bookings.conference_id
		LEFT JOIN users approvers ON approvers.id = bookings.approved_by`
}
