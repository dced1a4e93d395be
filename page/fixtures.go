package page

import (
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pg_service/domain"
	"pg_service/errors"
	"strconv"
	"time"
)

// FixtureSource serves the sample listings bundled with the app, keyed by
// small numeric ids. Development shells use it both as a fallback after a
// failed fetch and as an offline data source.
type FixtureSource struct {
	listings map[int]*domain.Listing
}

func NewFixtureSource() *FixtureSource {
	return &FixtureSource{
		listings: sampleListings(),
	}
}

func (source *FixtureSource) Lookup(id string) *domain.Listing {
	key, err := strconv.Atoi(id)
	if err != nil {
		return nil
	}
	return source.listings[key]
}

func (source *FixtureSource) FetchListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing := source.Lookup(id)
	if listing == nil {
		return nil, fmt.Errorf(errors.PGNotFoundError)
	}
	return listing, nil
}

func sampleListings() map[int]*domain.Listing {
	return map[int]*domain.Listing{
		1: {
			ID:          objectID("657f1f77bcf86cd799439011"),
			Title:       "Sunrise Residency PG",
			Location:    "Koramangala 5th Block, near Forum Mall",
			Price:       8500,
			Description: "Well maintained PG for working professionals with spacious rooms, daily housekeeping and home-style meals.",
			Amenities:   []string{"WiFi", "Food", "Laundry", "Power Backup", "Hot Water"},
			Gender:      domain.Male,
			RoomType:    domain.DoubleSharing,
			Address:     "121, 5th Block, Koramangala",
			City:        "Bangalore",
			Images: []string{
				"/images/fixtures/sunrise-1.jpg",
				"/images/fixtures/sunrise-2.jpg",
				"/images/fixtures/sunrise-3.jpg",
			},
			Rating: 4.2,
			Reviews: []domain.Review{
				{
					UserID:    "6580a2b4cf86cd7994390000",
					UserName:  "Rahul",
					Rating:    4,
					Comment:   "Clean rooms and the food is actually good.",
					CreatedAt: time.Date(2023, time.November, 12, 10, 0, 0, 0, time.UTC),
				},
				{
					UserID:    "6580a2b4cf86cd7994390001",
					UserName:  "Arjun",
					Rating:    4.5,
					Comment:   "Decent place, WiFi could be faster during evenings.",
					CreatedAt: time.Date(2024, time.January, 3, 18, 30, 0, 0, time.UTC),
				},
			},
			OwnerID:      "657f1f77bcf86cd799439100",
			OwnerName:    "Suresh Kumar",
			OwnerContact: "+91 98450 12345",
			CreatedAt:    time.Date(2023, time.June, 1, 9, 0, 0, 0, time.UTC),
			UpdatedAt:    time.Date(2024, time.January, 3, 18, 30, 0, 0, time.UTC),
			Rules: []string{
				"Gate closes at 11 PM",
				"No smoking inside the premises",
				"Visitors allowed only in the common hall",
			},
			NearbyPlaces: []string{
				"Forum Mall - 900 m",
				"Koramangala Bus Depot - 1.1 km",
			},
			Coordinates: &domain.GeoPoint{Lat: 12.9352, Lng: 77.6245},
		},
		2: {
			ID:          objectID("657f1f77bcf86cd799439012"),
			Title:       "Green Nest Ladies PG",
			Location:    "Viman Nagar, opposite Phoenix Marketcity",
			Price:       7000,
			Description: "Safe and homely PG for women with CCTV security and three meals included.",
			Amenities:   []string{"WiFi", "Food", "CCTV", "Washing Machine"},
			Gender:      domain.Female,
			RoomType:    domain.TripleSharing,
			Address:     "Plot 14, Viman Nagar",
			City:        "Pune",
			Images:      []string{"/images/fixtures/greennest-1.jpg"},
			Reviews:     []domain.Review{},
			OwnerID:     "657f1f77bcf86cd799439101",
			OwnerName:   "Meena Joshi",
			CreatedAt:   time.Date(2023, time.September, 15, 12, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2023, time.September, 15, 12, 0, 0, 0, time.UTC),
		},
		3: {
			ID:          objectID("657f1f77bcf86cd799439013"),
			Title:       "Metro View Co-living",
			Location:    "Lajpat Nagar II, two minutes from the metro gate",
			Price:       12000,
			Description: "Premium single rooms with attached washrooms, gym access and weekly deep cleaning.",
			Amenities:   []string{"WiFi", "AC", "Gym", "Housekeeping", "Fridge"},
			Gender:      domain.Unisex,
			RoomType:    domain.SingleRoom,
			Address:     "C-57, Lajpat Nagar II",
			City:        "Delhi",
			Images: []string{
				"/images/fixtures/metroview-1.jpg",
				"/images/fixtures/metroview-2.jpg",
			},
			Rating: 4.7,
			Reviews: []domain.Review{
				{
					UserID:    "6580a2b4cf86cd7994390002",
					UserName:  "Sneha",
					Rating:    5,
					Comment:   "Feels like a hotel, worth the rent.",
					CreatedAt: time.Date(2024, time.February, 20, 8, 15, 0, 0, time.UTC),
				},
			},
			OwnerID:      "657f1f77bcf86cd799439102",
			OwnerName:    "Vikram Malhotra",
			OwnerContact: "+91 98100 67890",
			CreatedAt:    time.Date(2022, time.December, 5, 14, 0, 0, 0, time.UTC),
			UpdatedAt:    time.Date(2024, time.February, 20, 8, 15, 0, 0, time.UTC),
			Rules: []string{
				"ID proof mandatory at move-in",
				"No loud music after 10 PM",
			},
			NearbyPlaces: []string{
				"Lajpat Nagar Metro Station - 200 m",
				"Central Market - 600 m",
				"Moolchand Hospital - 1.4 km",
			},
			Coordinates: &domain.GeoPoint{Lat: 28.5677, Lng: 77.2433},
		},
	}
}

func objectID(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}
