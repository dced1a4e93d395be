package domain

import "context"

type ListingCache interface {
	PostUrls(ctx context.Context, listingID string, urls []string) error
	GetUrls(ctx context.Context, listingID string) ([]string, error)
	DelUrls(ctx context.Context, listingID string) error
	PostImage(ctx context.Context, listingID string, imageName string, image []byte) error
	GetImage(ctx context.Context, listingID string, imageName string) ([]byte, error)
	IncrementViews(ctx context.Context, listingID string) (int64, error)
	GetViews(ctx context.Context, listingID string) (int64, error)
}
