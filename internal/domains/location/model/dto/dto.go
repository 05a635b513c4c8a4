package dto

import (
	"confbook/internal/domains/location/model"
	"confbook/shared"
	gDto "confbook/shared/dto"
	gModel "confbook/shared/model"
	"confbook/shared/timezone"

	"github.com/google/uuid"
)

type CreateLocationRequest struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Address string `json:"address" validate:"omitempty,max=255"`
	City    string `json:"city"    validate:"omitempty,max=100"`
	Active  *bool  `json:"active"  validate:"omitempty"`
}

func (c *CreateLocationRequest) ToModel(user string) model.Location {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Location{
		ID:      uuid.NewString(),
		Name:    c.Name,
		Address: c.Address,
		City:    c.City,
		Active:  active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateLocationRequest struct {
	Name    string `db:"name"    json:"name"    validate:"omitempty,max=100"`
	Address string `db:"address" json:"address" validate:"omitempty,max=255"`
	City    string `db:"city"    json:"city"    validate:"omitempty,max=100"`
	Active  *bool  `db:"active"  json:"active"  validate:"omitempty"`
}

type LocationResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Active  bool   `json:"active"`
	gDto.Metadata
}

func (r *LocationResponse) FromModel(model model.Location) {
	r.ID = model.ID
	r.Name = model.Name
	r.Address = model.Address
	r.City = model.City
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetLocationsResponse) FromModels(models []model.Location, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Locations = make([]LocationResponse, len(models))
	for i, mod := range models {
		r.Locations[i].FromModel(mod)
	}
}
