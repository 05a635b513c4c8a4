package dto

import (
	"mime/multipart"
	"time"

	"confbook/internal/domains/conference/model"
	"confbook/shared"
	gDto "confbook/shared/dto"
	gModel "confbook/shared/model"
	"confbook/shared/timezone"

	"github.com/google/uuid"
)

const startDateFormat = "2006-01-02"

type CreateConferenceRequest struct {
	Title            string                `json:"title"             validate:"required,max=200"`
	Description      string                `json:"description"       validate:"omitempty"`
	LocationID       string                `json:"location_id"       validate:"omitempty,uuid"`
	CategoryID       string                `json:"category_id"       validate:"omitempty,uuid"`
	Capacity         int                   `json:"capacity"          validate:"omitempty,min=0"`
	Price            float64               `json:"price"             validate:"omitempty,min=0"`
	StartDate        string                `json:"start_date"        validate:"required"`
	RequiresApproval *bool                 `json:"requires_approval" validate:"omitempty"`
	Image            *multipart.FileHeader `json:"image"             validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile        multipart.File        `json:"-"`
	Active           *bool                 `json:"active"            validate:"omitempty"`
}

func (c *CreateConferenceRequest) ToModel(user string, imageURL string) (model.Conference, error) {
	startDate, err := time.Parse(startDateFormat, c.StartDate)
	if err != nil {
		return model.Conference{}, err
	}

	requiresApproval := true
	if c.RequiresApproval != nil {
		requiresApproval = *c.RequiresApproval
	}

	active := true
	if c.Active != nil {
		active = *c.Active
	}

	var locationID, categoryID *string
	if c.LocationID != "" {
		locationID = &c.LocationID
	}

	if c.CategoryID != "" {
		categoryID = &c.CategoryID
	}

	return model.Conference{
		ID:               uuid.NewString(),
		Title:            c.Title,
		Description:      c.Description,
		LocationID:       locationID,
		CategoryID:       categoryID,
		Capacity:         c.Capacity,
		Price:            c.Price,
		StartDate:        startDate,
		RequiresApproval: requiresApproval,
		Image:            imageURL,
		Active:           active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateConferenceRequest struct {
	Title            string                `db:"title"             json:"title"       validate:"omitempty,max=200"`
	Description      string                `db:"description"       json:"description" validate:"omitempty"`
	LocationID       *string               `db:"location_id"       json:"location_id" validate:"omitempty,uuid"`
	CategoryID       *string               `db:"category_id"       json:"category_id" validate:"omitempty,uuid"`
	Capacity         *int                  `db:"capacity"          json:"capacity"    validate:"omitempty,min=0"`
	Price            *float64              `db:"price"             json:"price"       validate:"omitempty,min=0"`
	StartDate        string                `json:"start_date"        validate:"omitempty"`
	RequiresApproval *bool                 `db:"requires_approval" json:"requires_approval" validate:"omitempty"`
	Image            *multipart.FileHeader `json:"image"             validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile        multipart.File        `json:"-"`
	Active           *bool                 `db:"active"            json:"active"      validate:"omitempty"`
}

// ParseStartDate returns the parsed start date and whether one was supplied.
func (u *UpdateConferenceRequest) ParseStartDate() (time.Time, bool, error) {
	if u.StartDate == "" {
		return time.Time{}, false, nil
	}

	parsed, err := time.Parse(startDateFormat, u.StartDate)
	if err != nil {
		return time.Time{}, false, err
	}

	return parsed, true, nil
}

// CallerBooking is the requesting user's own booking on a conference. It is
// attached after the cache step so the cached snapshot stays user-agnostic.
type CallerBooking struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type ConferenceResponse struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	LocationID       *string        `json:"location_id"`
	LocationName     *string        `json:"location_name"`
	CategoryID       *string        `json:"category_id"`
	CategoryName     *string        `json:"category_name"`
	Capacity         int            `json:"capacity"`
	Price            float64        `json:"price"`
	StartDate        string         `json:"start_date"`
	RequiresApproval bool           `json:"requires_approval"`
	Image            string         `json:"image"`
	Active           bool           `json:"active"`
	MyBooking        *CallerBooking `json:"my_booking,omitempty"`
	gDto.Metadata
}

func (r *ConferenceResponse) FromModel(model model.Conference) {
	r.ID = model.ID
	r.Title = model.Title
	r.Description = model.Description
	r.LocationID = model.LocationID
	r.LocationName = model.LocationName
	r.CategoryID = model.CategoryID
	r.CategoryName = model.CategoryName
	r.Capacity = model.Capacity
	r.Price = model.Price
	r.StartDate = model.StartDate.Format(startDateFormat)
	r.RequiresApproval = model.RequiresApproval
	r.Image = model.Image
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetConferencesResponse struct {
	Conferences []ConferenceResponse `json:"conferences"`
	TotalPage   int                  `json:"total_page"`
	TotalData   int                  `json:"total_data"`
}

func (r *GetConferencesResponse) FromModels(models []model.Conference, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Conferences = make([]ConferenceResponse, len(models))
	for i, mod := range models {
		r.Conferences[i].FromModel(mod)
	}
}

// AvailabilityResponse reports seat usage for one conference. AvailableSeats
// can go negative when approvals outpace a capacity reduction.
type AvailabilityResponse struct {
	ConferenceID   string `json:"conference_id"`
	Capacity       int    `json:"total_capacity"`
	BookedSeats    int    `json:"booked_seats"`
	AvailableSeats int    `json:"available_seats"`
	IsAvailable    bool   `json:"is_available"`
}
