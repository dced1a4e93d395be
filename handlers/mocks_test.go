package handlers_test

import (
	"context"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pg_service/domain"
)

type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockListingStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingStore) GetAll(ctx context.Context) (domain.Listings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Listings), args.Error(1)
}

func (m *MockListingStore) Search(ctx context.Context, filter domain.SearchFilter) (domain.Listings, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Listings), args.Error(1)
}

func (m *MockListingStore) GetByOwner(ctx context.Context, ownerID string) (domain.Listings, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Listings), args.Error(1)
}

func (m *MockListingStore) Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingStore) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingStore) AddReview(ctx context.Context, id primitive.ObjectID, review *domain.Review, rating float64) (*domain.Listing, error) {
	args := m.Called(ctx, id, review, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) PostUrls(ctx context.Context, listingID string, urls []string) error {
	args := m.Called(ctx, listingID, urls)
	return args.Error(0)
}

func (m *MockListingCache) GetUrls(ctx context.Context, listingID string) ([]string, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockListingCache) DelUrls(ctx context.Context, listingID string) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

func (m *MockListingCache) PostImage(ctx context.Context, listingID string, imageName string, image []byte) error {
	args := m.Called(ctx, listingID, imageName, image)
	return args.Error(0)
}

func (m *MockListingCache) GetImage(ctx context.Context, listingID string, imageName string) ([]byte, error) {
	args := m.Called(ctx, listingID, imageName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockListingCache) IncrementViews(ctx context.Context, listingID string) (int64, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingCache) GetViews(ctx context.Context, listingID string) (int64, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(int64), args.Error(1)
}

type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) SaveImage(ctx context.Context, listingID string, imageName string, content []byte) error {
	args := m.Called(ctx, listingID, imageName, content)
	return args.Error(0)
}

func (m *MockImageStorage) GetImage(ctx context.Context, listingID string, imageName string) ([]byte, error) {
	args := m.Called(ctx, listingID, imageName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockImageStorage) GetImageURLs(ctx context.Context, listingID string) ([]string, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
