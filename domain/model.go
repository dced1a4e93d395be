package domain

import (
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"io"
	"regexp"
	"time"
)

type Listing struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title" validate:"required,min=3,max=100"`
	Location     string             `bson:"location" json:"location" validate:"required,max=160"`
	Price        float64            `bson:"price" json:"price" validate:"required,gt=0"`
	Description  string             `bson:"description" json:"description" validate:"max=2000"`
	Amenities    []string           `bson:"amenities" json:"amenities" validate:"omitempty,dive,required"`
	Gender       Gender             `bson:"gender" json:"gender" validate:"required,oneof=Male Female Unisex"`
	RoomType     RoomType           `bson:"roomType" json:"roomType" validate:"required,oneof='Single Room' 'Double Sharing' 'Triple Sharing'"`
	Address      string             `bson:"address" json:"address" validate:"required,min=5,max=160"`
	City         string             `bson:"city" json:"city" validate:"required,cityName"`
	Images       []string           `bson:"images" json:"images" validate:"omitempty,dive,required"`
	Rating       float64            `bson:"rating" json:"rating" validate:"omitempty,gte=0,lte=5"`
	Reviews      []Review           `bson:"reviews" json:"reviews" validate:"-"`
	OwnerID      string             `bson:"ownerId" json:"ownerId" validate:"required,len=24,hexadecimal"`
	OwnerName    string             `bson:"ownerName,omitempty" json:"ownerName,omitempty" validate:"omitempty,max=60"`
	OwnerContact string             `bson:"ownerContact,omitempty" json:"ownerContact,omitempty" validate:"omitempty,min=7,max=20"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	Rules        []string           `bson:"rules,omitempty" json:"rules,omitempty" validate:"omitempty,dive,required"`
	NearbyPlaces []string           `bson:"nearbyPlaces,omitempty" json:"nearbyPlaces,omitempty" validate:"omitempty,dive,required"`
	Coordinates  *GeoPoint          `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `bson:"lng" json:"lng" validate:"gte=-180,lte=180"`
}

type Review struct {
	UserID    string    `bson:"userId" json:"userId" validate:"required,len=24,hexadecimal"`
	UserName  string    `bson:"userName" json:"userName" validate:"required,max=60"`
	Rating    float64   `bson:"rating" json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string    `bson:"comment" json:"comment" validate:"required,min=2,max=1000"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Gender string

const (
	Male   = "Male"
	Female = "Female"
	Unisex = "Unisex"
)

type RoomType string

const (
	SingleRoom    = "Single Room"
	DoubleSharing = "Double Sharing"
	TripleSharing = "Triple Sharing"
)

type SearchFilter struct {
	City    string  `json:"city"`
	Gender  string  `json:"gender"`
	MaxRent float64 `json:"maxRent"`
}

// ErrResp marks a non-2xx reply from an upstream endpoint. The circuit
// breaker treats client errors as regular responses, not failures.
type ErrResp struct {
	URL        string
	StatusCode int
}

func (e ErrResp) Error() string {
	return fmt.Sprintf("error response from %s: %d", e.URL, e.StatusCode)
}

func (listing *Listing) Validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("cityName", cityNameField)
	if err != nil {
		return err
	}

	return validate.Struct(listing)
}

func (review *Review) Validate() error {
	validate := validator.New()
	return validate.Struct(review)
}

// Allows letters with single spaces, e.g. "Navi Mumbai"
func cityNameField(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[a-zA-Z]+(?: [a-zA-Z]+)*$`)
	return re.MatchString(fl.Field().String())
}

func (listing *Listing) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(listing)
}

func (listing *Listing) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(listing)
}

func (review *Review) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(review)
}

type Listings []*Listing

func (listings Listings) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(listings)
}
