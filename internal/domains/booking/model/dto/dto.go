package dto

import (
	"time"

	"confbook/internal/domains/booking/model"
	"confbook/shared"
	gDto "confbook/shared/dto"
	gModel "confbook/shared/model"
	"confbook/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ConferenceID  string `json:"conference_id" validate:"required,uuid"`
	Justification string `json:"justification" validate:"omitempty"`
}

func (c *CreateBookingRequest) ToModel(userID, status string) model.Booking {
	return model.Booking{
		ID:            uuid.NewString(),
		UserID:        userID,
		ConferenceID:  c.ConferenceID,
		Status:        status,
		Justification: c.Justification,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

type ApproveBookingRequest struct {
	Notes string `json:"notes" validate:"omitempty"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// UpdateDecisionRequest carries the approver's status write. Zero fields are
// skipped by the update transform, so rejected bookings keep approved_at as
// the decision timestamp.
type UpdateDecisionRequest struct {
	Status          string    `db:"status"           validate:"required,oneof=approved rejected"`
	Notes           string    `db:"notes"            validate:"omitempty"`
	ApprovedBy      string    `db:"approved_by"      validate:"required"`
	ApprovedAt      time.Time `db:"approved_at"      validate:"required"`
	RejectionReason string    `db:"rejection_reason" validate:"omitempty"`
}

type BookingResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	UserEmail       string     `json:"user_email"`
	UserName        string     `json:"user_name"`
	UserDepartment  string     `json:"user_department"`
	ConferenceID    string     `json:"conference_id"`
	ConferenceTitle string     `json:"conference_title"`
	ConferencePrice float64    `json:"conference_price"`
	Status          string     `json:"status"`
	Justification   string     `json:"justification"`
	Notes           string     `json:"notes"`
	ApprovedBy      *string    `json:"approved_by"`
	ApproverEmail   *string    `json:"approver_email"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectionReason string     `json:"rejection_reason"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.UserEmail = model.UserEmail
	r.UserName = model.UserName
	r.UserDepartment = model.UserDepartment
	r.ConferenceID = model.ConferenceID
	r.ConferenceTitle = model.ConferenceTitle
	r.ConferencePrice = model.ConferencePrice
	r.Status = model.Status
	r.Justification = model.Justification
	r.Notes = model.Notes
	r.ApprovedBy = model.ApprovedBy
	r.ApproverEmail = model.ApproverEmail
	r.ApprovedAt = model.ApprovedAt
	r.RejectionReason = model.RejectionReason
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
