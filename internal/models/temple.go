package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType identifies one of the four daily media slots a temple can
// publish. The set is closed: unknown keys are rejected at the boundary and
// never stored.
type ContentType string

const (
	MorningDarshan ContentType = "morningDarshan"
	EveningDarshan ContentType = "eveningDarshan"
	MorningAarti   ContentType = "morningAarti"
	EveningAarti   ContentType = "eveningAarti"
)

// ContentTypes returns all four slot types in canonical order.
func ContentTypes() []ContentType {
	return []ContentType{MorningDarshan, EveningDarshan, MorningAarti, EveningAarti}
}

// ParseContentType validates a raw slot key.
func ParseContentType(raw string) (ContentType, error) {
	switch ContentType(raw) {
	case MorningDarshan, EveningDarshan, MorningAarti, EveningAarti:
		return ContentType(raw), nil
	}
	return "", fmt.Errorf("unknown content type %q", raw)
}

// IsVideo reports whether the slot holds a video (aarti) rather than a photo.
func (ct ContentType) IsVideo() bool {
	return ct == MorningAarti || ct == EveningAarti
}

// DailySlots is the sparse per-day slot record nested under a date key in a
// temple's videos map. A zero value means nothing uploaded yet.
type DailySlots struct {
	MorningDarshan string `bson:"morningDarshan,omitempty" json:"morningDarshan,omitempty"`
	EveningDarshan string `bson:"eveningDarshan,omitempty" json:"eveningDarshan,omitempty"`
	MorningAarti   string `bson:"morningAarti,omitempty" json:"morningAarti,omitempty"`
	EveningAarti   string `bson:"eveningAarti,omitempty" json:"eveningAarti,omitempty"`
}

// Get returns the URL stored for the given slot type, or "".
func (d DailySlots) Get(ct ContentType) string {
	switch ct {
	case MorningDarshan:
		return d.MorningDarshan
	case EveningDarshan:
		return d.EveningDarshan
	case MorningAarti:
		return d.MorningAarti
	case EveningAarti:
		return d.EveningAarti
	}
	return ""
}

// Set writes the URL for the given slot type, leaving siblings untouched.
func (d *DailySlots) Set(ct ContentType, url string) {
	switch ct {
	case MorningDarshan:
		d.MorningDarshan = url
	case EveningDarshan:
		d.EveningDarshan = url
	case MorningAarti:
		d.MorningAarti = url
	case EveningAarti:
		d.EveningAarti = url
	}
}

// Clear removes the URL for the given slot type.
func (d *DailySlots) Clear(ct ContentType) { d.Set(ct, "") }

// IsEmpty reports whether no slot of the day holds a URL.
func (d DailySlots) IsEmpty() bool {
	return d.MorningDarshan == "" && d.EveningDarshan == "" &&
		d.MorningAarti == "" && d.EveningAarti == ""
}

// FilledTypes returns the slot types that currently hold a URL.
func (d DailySlots) FilledTypes() []ContentType {
	var out []ContentType
	for _, ct := range ContentTypes() {
		if d.Get(ct) != "" {
			out = append(out, ct)
		}
	}
	return out
}

// TempleModel is a temple document. Videos maps a YYYY-MM-DD date key (in the
// business calendar) to that day's slot record.
type TempleModel struct {
	ObjectID           primitive.ObjectID    `bson:"_id,omitempty" json:"-"`
	ID                 string                `bson:"id" json:"id"`
	Name               string                `bson:"name" json:"name"`
	NameHindi          string                `bson:"nameHindi,omitempty" json:"nameHindi,omitempty"`
	Description        string                `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionHindi   string                `bson:"descriptionHindi,omitempty" json:"descriptionHindi,omitempty"`
	Location           string                `bson:"location" json:"location"`
	LocationHindi      string                `bson:"locationHindi,omitempty" json:"locationHindi,omitempty"`
	Image              string                `bson:"image,omitempty" json:"image,omitempty"`
	ActiveContentTypes []ContentType         `bson:"activeContentTypes" json:"activeContentTypes"`
	Videos             map[string]DailySlots `bson:"videos" json:"videos"`
	CreatedAt          time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// ActiveSet returns the active content types as a set for membership tests.
func (t *TempleModel) ActiveSet() map[ContentType]struct{} {
	set := make(map[ContentType]struct{}, len(t.ActiveContentTypes))
	for _, ct := range t.ActiveContentTypes {
		set[ct] = struct{}{}
	}
	return set
}
