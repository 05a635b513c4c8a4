package dto

import (
	"confbook/internal/domains/user/model"
	"confbook/shared"
	gDto "confbook/shared/dto"
)

// UpdateUserRequest represents the request for updating a user (admin)
type UpdateUserRequest struct {
	FullName   string `db:"full_name"  json:"full_name"  validate:"omitempty,min=2,max=100"`
	Role       string `db:"role"       json:"role"       validate:"omitempty,oneof=admin manager staff"`
	Department string `db:"department" json:"department" validate:"omitempty,max=100"`
	Active     *bool  `db:"active"     json:"active"     validate:"omitempty"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	LastLogin  *string `json:"last_login"`
	Active     bool    `json:"active"`
	gDto.Metadata
}

// FromModel converts a user model to UserResponse
func (r *UserResponse) FromModel(user model.User) {
	r.ID = user.ID
	r.Email = user.Email
	r.FullName = user.FullName
	r.Role = user.Role
	r.Department = user.Department
	r.LastLogin = user.LastLogin
	r.Active = user.Active
	r.Metadata.FromModel(user.Metadata)
}

// GetUsersResponse represents the response for getting multiple users
type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

// FromModels converts user models to GetUsersResponse
func (r *GetUsersResponse) FromModels(users []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(users))
	for i, user := range users {
		r.Users[i].FromModel(user)
	}
}
