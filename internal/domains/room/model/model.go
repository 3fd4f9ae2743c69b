package model

import "innkeeper/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID          = "id"
	FieldNumber      = "number"
	FieldType        = "type"
	FieldPrice       = "price"
	FieldStatus      = "status"
	FieldDescription = "description"
	FieldImage       = "image"

	StatusAvailable = "Available"
	StatusBooked    = "Booked"
	StatusCleaning  = "Cleaning"
)

type Room struct {
	ID          string `db:"id"`
	Number      string `db:"number"`
	Type        string `db:"type"`
	Price       int64  `db:"price"`
	Status      string `db:"status"`
	Description string `db:"description"`
	Image       string `db:"image"`
	model.Metadata
}
