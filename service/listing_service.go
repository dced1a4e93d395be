package application

import (
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"math"
	"pg_service/domain"
	"pg_service/errors"
	"time"
)

type ListingService struct {
	store   domain.ListingStore
	cache   domain.ListingCache
	storage domain.ImageStorage
	logger  *logrus.Logger
}

func NewListingService(store domain.ListingStore, cache domain.ListingCache, storage domain.ImageStorage, logger *logrus.Logger) *ListingService {
	return &ListingService{
		store:   store,
		cache:   cache,
		storage: storage,
		logger:  logger,
	}
}

// Ping reports whether the listing store is reachable. The lookup endpoint
// refuses to serve anything while the database is down.
func (service *ListingService) Ping(ctx context.Context) error {
	return service.store.Ping(ctx)
}

func (service *ListingService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	listing, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf(errors.PGNotFoundError)
	}
	return listing, nil
}

func (service *ListingService) GetAll(ctx context.Context) (domain.Listings, error) {
	return service.store.GetAll(ctx)
}

func (service *ListingService) Search(ctx context.Context, filter domain.SearchFilter) (domain.Listings, error) {
	return service.store.Search(ctx, filter)
}

func (service *ListingService) GetByOwner(ctx context.Context, ownerID string) (domain.Listings, error) {
	return service.store.GetByOwner(ctx, ownerID)
}

func (service *ListingService) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	now := time.Now()

	listingInfo := domain.Listing{
		Title:        listing.Title,
		Location:     listing.Location,
		Price:        listing.Price,
		Description:  listing.Description,
		Amenities:    listing.Amenities,
		Gender:       listing.Gender,
		RoomType:     listing.RoomType,
		Address:      listing.Address,
		City:         listing.City,
		Images:       listing.Images,
		OwnerID:      listing.OwnerID,
		OwnerName:    listing.OwnerName,
		OwnerContact: listing.OwnerContact,
		Rules:        listing.Rules,
		NearbyPlaces: listing.NearbyPlaces,
		Coordinates:  listing.Coordinates,
		Reviews:      []domain.Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return service.store.Insert(ctx, &listingInfo)
}

func (service *ListingService) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	listing.UpdatedAt = time.Now()
	return service.store.Update(ctx, listing)
}

func (service *ListingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return service.store.Delete(ctx, id)
}

// AddReview appends one review and recomputes the aggregate rating as the
// mean of all review ratings, rounded to one decimal.
func (service *ListingService) AddReview(ctx context.Context, id primitive.ObjectID, review *domain.Review) (*domain.Listing, error) {
	listing, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf(errors.PGNotFoundError)
	}

	review.CreatedAt = time.Now()

	sum := review.Rating
	for _, existing := range listing.Reviews {
		sum += existing.Rating
	}
	rating := math.Round(sum/float64(len(listing.Reviews)+1)*10) / 10

	updated, err := service.store.AddReview(ctx, id, review, rating)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf(errors.PGNotFoundError)
	}
	return updated, nil
}

func (service *ListingService) CountView(ctx context.Context, listingID string) (int64, error) {
	return service.cache.IncrementViews(ctx, listingID)
}

func (service *ListingService) GetViews(ctx context.Context, listingID string) (int64, error) {
	return service.cache.GetViews(ctx, listingID)
}

func (service *ListingService) UploadImage(ctx context.Context, listingID string, imageName string, content []byte) error {
	err := service.storage.SaveImage(ctx, listingID, imageName, content)
	if err != nil {
		return err
	}

	// The cached gallery is stale after an upload
	if err := service.cache.DelUrls(ctx, listingID); err != nil {
		service.logger.Println(err)
	}
	return nil
}

func (service *ListingService) GetImageURLs(ctx context.Context, listingID string) ([]string, error) {
	urls, err := service.cache.GetUrls(ctx, listingID)
	if err == nil {
		return urls, nil
	}

	urls, err = service.storage.GetImageURLs(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := service.cache.PostUrls(ctx, listingID, urls); err != nil {
		service.logger.Println(err)
	}
	return urls, nil
}

func (service *ListingService) GetImage(ctx context.Context, listingID string, imageName string) ([]byte, error) {
	image, err := service.cache.GetImage(ctx, listingID, imageName)
	if err == nil {
		return image, nil
	}

	image, err = service.storage.GetImage(ctx, listingID, imageName)
	if err != nil {
		return nil, err
	}

	if err := service.cache.PostImage(ctx, listingID, imageName, image); err != nil {
		service.logger.Println(err)
	}
	return image, nil
}
