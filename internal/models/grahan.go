package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GrahanModel is an eclipse calendar entry (solar or lunar).
type GrahanModel struct {
	ObjectID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID                  string             `bson:"id" json:"id"`
	StartDateTime       time.Time          `bson:"startDateTime" json:"startDateTime"`
	EndDateTime         time.Time          `bson:"endDateTime" json:"endDateTime"`
	AffectedPlaces      string             `bson:"affectedPlaces,omitempty" json:"affectedPlaces,omitempty"`
	AffectedPlacesHindi string             `bson:"affectedPlacesHindi,omitempty" json:"affectedPlacesHindi,omitempty"`
	Description         string             `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionHindi    string             `bson:"descriptionHindi,omitempty" json:"descriptionHindi,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
