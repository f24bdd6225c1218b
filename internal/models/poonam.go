package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PoonamModel is a full-moon calendar entry. It has no relationship to
// temples or the slot model.
type PoonamModel struct {
	ObjectID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID               string             `bson:"id" json:"id"`
	StartDateTime    time.Time          `bson:"startDateTime" json:"startDateTime"`
	EndDateTime      time.Time          `bson:"endDateTime" json:"endDateTime"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionHindi string             `bson:"descriptionHindi,omitempty" json:"descriptionHindi,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
