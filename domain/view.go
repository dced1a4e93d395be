package domain

import (
	"fmt"
	"strings"
)

const (
	PlaceholderImage  = "/images/pg-placeholder.jpg"
	DefaultRating     = 4.0
	RoomsAvailable    = 2
	OwnerResponseTime = "Usually responds within 1 hour"

	defaultOwnerName    = "PG Owner"
	defaultOwnerContact = "+91 98765 43210"

	reviewDateLayout  = "January 2, 2006"
	memberSinceLayout = "January 2006"
)

type ListingView struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Location     string         `json:"location"`
	Price        float64        `json:"price"`
	Description  string         `json:"description"`
	Amenities    []AmenityView  `json:"amenities"`
	Gender       Gender         `json:"gender"`
	RoomTypes    []RoomTypeView `json:"roomTypes"`
	Address      string         `json:"address"`
	City         string         `json:"city"`
	Images       []string       `json:"images"`
	Rating       float64        `json:"rating"`
	Reviews      []ReviewView   `json:"reviews"`
	Rules        []string       `json:"rules"`
	NearbyPlaces []string       `json:"nearbyPlaces"`
	Coordinates  GeoPoint       `json:"coordinates"`
	Owner        OwnerView      `json:"owner"`
}

type AmenityView struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type RoomTypeView struct {
	Type      RoomType `json:"type"`
	Price     float64  `json:"price"`
	Available int      `json:"available"`
}

type ReviewView struct {
	Index    int     `json:"index"`
	UserName string  `json:"userName"`
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment"`
	Date     string  `json:"date"`
}

type OwnerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	ResponseTime string `json:"responseTime"`
	MemberSince  string `json:"memberSince"`
}

// The first entry doubles as the fallback for labels with no match.
var amenityIcons = []AmenityView{
	{Name: "WiFi", Icon: "wifi"},
	{Name: "AC", Icon: "snowflake"},
	{Name: "Food", Icon: "utensils"},
	{Name: "Laundry", Icon: "shirt"},
	{Name: "Parking", Icon: "car"},
	{Name: "Power Backup", Icon: "zap"},
	{Name: "Hot Water", Icon: "droplets"},
	{Name: "TV", Icon: "tv"},
	{Name: "Fridge", Icon: "refrigerator"},
	{Name: "CCTV", Icon: "camera"},
	{Name: "Housekeeping", Icon: "sparkles"},
	{Name: "Gym", Icon: "dumbbell"},
	{Name: "Security", Icon: "shield"},
}

var defaultRules = []string{
	"No smoking inside the premises",
	"Visitors allowed only in common areas",
	"Maintain silence after 10 PM",
	"No pets allowed",
	"Rent to be paid by the 5th of every month",
}

var fallbackCoordinates = GeoPoint{Lat: 28.6139, Lng: 77.2090}

// FormatListing builds the display model for a stored listing. It never
// mutates its argument and fills every optional field with a default, so
// the page can render any listing the lookup endpoint returns.
func FormatListing(listing *Listing) *ListingView {
	if listing == nil {
		return nil
	}

	view := &ListingView{
		ID:          listing.ID.Hex(),
		Title:       listing.Title,
		Location:    listing.Location,
		Price:       listing.Price,
		Description: listing.Description,
		Gender:      listing.Gender,
		Address:     listing.Address,
		City:        listing.City,
		Rating:      listing.Rating,
	}

	images := make([]string, 0, len(listing.Images))
	for _, image := range listing.Images {
		if strings.HasPrefix(image, "http") || strings.HasPrefix(image, "/") {
			images = append(images, image)
		} else {
			images = append(images, PlaceholderImage)
		}
	}
	if len(images) == 0 {
		images = append(images, PlaceholderImage)
	}
	view.Images = images

	amenities := make([]AmenityView, 0, len(listing.Amenities))
	for _, name := range listing.Amenities {
		amenities = append(amenities, AmenityView{Name: name, Icon: amenityIcon(name)})
	}
	view.Amenities = amenities

	reviews := make([]ReviewView, 0, len(listing.Reviews))
	for i, review := range listing.Reviews {
		reviews = append(reviews, ReviewView{
			Index:    i + 1,
			UserName: review.UserName,
			Rating:   review.Rating,
			Comment:  review.Comment,
			Date:     review.CreatedAt.Format(reviewDateLayout),
		})
	}
	view.Reviews = reviews

	if view.Rating == 0 {
		view.Rating = DefaultRating
	}

	view.RoomTypes = []RoomTypeView{
		{Type: listing.RoomType, Price: listing.Price, Available: RoomsAvailable},
	}

	if len(listing.Rules) > 0 {
		view.Rules = append([]string(nil), listing.Rules...)
	} else {
		view.Rules = append([]string(nil), defaultRules...)
	}

	if len(listing.NearbyPlaces) > 0 {
		view.NearbyPlaces = append([]string(nil), listing.NearbyPlaces...)
	} else {
		view.NearbyPlaces = defaultNearbyPlaces(listing.City)
	}

	if listing.Coordinates != nil {
		view.Coordinates = *listing.Coordinates
	} else {
		view.Coordinates = fallbackCoordinates
	}

	view.Owner = OwnerView{
		ID:           listing.OwnerID,
		Name:         listing.OwnerName,
		Contact:      listing.OwnerContact,
		ResponseTime: OwnerResponseTime,
		MemberSince:  listing.CreatedAt.Format(memberSinceLayout),
	}
	if view.Owner.Name == "" {
		view.Owner.Name = defaultOwnerName
	}
	if view.Owner.Contact == "" {
		view.Owner.Contact = defaultOwnerContact
	}

	return view
}

func amenityIcon(name string) string {
	for _, entry := range amenityIcons {
		if entry.Name == name {
			return entry.Icon
		}
	}
	return amenityIcons[0].Icon
}

func defaultNearbyPlaces(city string) []string {
	return []string{
		fmt.Sprintf("%s Metro Station - 500 m", city),
		fmt.Sprintf("%s City Mall - 1.2 km", city),
		fmt.Sprintf("%s Bus Stand - 1.5 km", city),
		fmt.Sprintf("%s Railway Station - 3 km", city),
	}
}
