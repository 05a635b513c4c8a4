package model

import (
	"confbook/shared/model"
	"time"
)

const (
	TableName  = "conferences"
	EntityName = "conference"

	FieldID               = "id"
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldLocationID       = "location_id"
	FieldCategoryID       = "category_id"
	FieldCapacity         = "capacity"
	FieldPrice            = "price"
	FieldStartDate        = "start_date"
	FieldRequiresApproval = "requires_approval"
	FieldImage            = "image"
	FieldActive           = "active"
)

type Conference struct {
	ID               string    `db:"id"`
	Title            string    `db:"title"`
	Description      string    `db:"description"`
	LocationID       *string   `db:"location_id"`
	CategoryID       *string   `db:"category_id"`
	Capacity         int       `db:"capacity"`
	Price            float64   `db:"price"`
	StartDate        time.Time `db:"start_date"`
	RequiresApproval bool      `db:"requires_approval"`
	Image            string    `db:"image"`
	Active           bool      `db:"active"`
	LocationName     *string   `db:"location_name" table:"locations"  column:"name"`
	CategoryName     *string   `db:"category_name" table:"categories" column:"name"`
	model.Metadata
}

func (Conference) GetJoinQuery() string {
	return `LEFT JOIN locations ON locations.id = conferences.location_id
		LEFT JOIN categories ON categories.id = conferences.category_id`
}
