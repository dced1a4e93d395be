package domain

import (
	"context"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingStore interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, id primitive.ObjectID) (*Listing, error)
	GetAll(ctx context.Context) (Listings, error)
	Search(ctx context.Context, filter SearchFilter) (Listings, error)
	GetByOwner(ctx context.Context, ownerID string) (Listings, error)
	Insert(ctx context.Context, listing *Listing) (*Listing, error)
	Update(ctx context.Context, listing *Listing) (*Listing, error)
	AddReview(ctx context.Context, id primitive.ObjectID, review *Review, rating float64) (*Listing, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
