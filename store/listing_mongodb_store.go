package store

import (
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel/trace"
	"pg_service/domain"
	"pg_service/errors"
	"time"
)

const (
	DATABASE   = "pg"
	COLLECTION = "listings"
)

type ListingMongoDBStore struct {
	listings *mongo.Collection
	client   *mongo.Client
	tracer   trace.Tracer
}

func NewListingMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.ListingStore {
	listings := client.Database(DATABASE).Collection(COLLECTION)
	return &ListingMongoDBStore{
		listings: listings,
		client:   client,
		tracer:   tracer,
	}
}

func (store *ListingMongoDBStore) Ping(ctx context.Context) error {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.Ping")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return store.client.Ping(ctx, readpref.Primary())
}

func (store *ListingMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.Get")
	defer span.End()

	filter := bson.M{"_id": id}
	return store.filterOne(ctx, filter)
}

func (store *ListingMongoDBStore) GetAll(ctx context.Context) (domain.Listings, error) {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.GetAll")
	defer span.End()

	filter := bson.D{{}}
	return store.filter(ctx, filter)
}

func (store *ListingMongoDBStore) Search(ctx context.Context, searchFilter domain.SearchFilter) (domain.Listings, error) {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.Search")
	defer span.End()

	filter := bson.M{}
	if searchFilter.City != "" {
		filter["city"] = bson.M{"$regex": searchFilter.City, "$options": "i"}
	}
	if searchFilter.Gender != "" {
		filter["gender"] = searchFilter.Gender
	}
	if searchFilter.MaxRent > 0 {
		filter["price"] = bson.M{"$lte": searchFilter.MaxRent}
	}

	return store.filter(ctx, filter)
}

func (store *ListingMongoDBStore) GetByOwner(ctx context.Context, ownerID string) (domain.Listings, error) {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.GetByOwner")
	defer span.End()

	filter := bson.M{"ownerId": ownerID}
	return store.filter(ctx, filter)
}

func (store *ListingMongoDBStore) Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.Insert")
	defer span.End()

	listing.ID = primitive.NewObjectID()
	result, err := store.listings.InsertOne(ctx, listing)
	if err != nil {
		return nil, err
	}
	listing.ID = result.InsertedID.(primitive.ObjectID)
	return listing, nil
}

func (store *ListingMongoDBStore) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.Update")
	defer span.End()

	updateData := bson.M{
		"title":        listing.Title,
		"location":     listing.Location,
		"price":        listing.Price,
		"description":  listing.Description,
		"amenities":    listing.Amenities,
		"gender":       listing.Gender,
		"roomType":     listing.RoomType,
		"address":      listing.Address,
		"city":         listing.City,
		"images":       listing.Images,
		"ownerName":    listing.OwnerName,
		"ownerContact": listing.OwnerContact,
		"rules":        listing.Rules,
		"nearbyPlaces": listing.NearbyPlaces,
		"coordinates":  listing.Coordinates,
		"updatedAt":    listing.UpdatedAt,
	}

	filter := bson.M{"_id": listing.ID}
	update := bson.M{"$set": updateData}

	result, err := store.listings.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf(errors.NoPGUpdatedError)
	}

	return listing, nil
}

func (store *ListingMongoDBStore) AddReview(ctx context.Context, id primitive.ObjectID, review *domain.Review, rating float64) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.AddReview")
	defer span.End()

	filter := bson.M{"_id": id}
	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$set":  bson.M{"rating": rating, "updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing domain.Listing
	err := store.listings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &listing, nil
}

func (store *ListingMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "ListingMongoDBStore.Delete")
	defer span.End()

	filter := bson.M{"_id": id}
	result, err := store.listings.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf(errors.NoPGDeletedError)
	}

	return nil
}

func (store *ListingMongoDBStore) filter(ctx context.Context, filter interface{}) (domain.Listings, error) {
	cursor, err := store.listings.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decode(ctx, cursor)
}

func (store *ListingMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Listing, error) {
	result := store.listings.FindOne(ctx, filter)

	var listing domain.Listing
	if err := result.Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &listing, nil
}

func decode(ctx context.Context, cursor *mongo.Cursor) (listings domain.Listings, err error) {
	for cursor.Next(ctx) {
		var listing domain.Listing
		err = cursor.Decode(&listing)
		if err != nil {
			return
		}
		listings = append(listings, &listing)
	}
	err = cursor.Err()
	return
}
