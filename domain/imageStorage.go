package domain

import "context"

type ImageStorage interface {
	SaveImage(ctx context.Context, listingID string, imageName string, content []byte) error
	GetImage(ctx context.Context, listingID string, imageName string) ([]byte, error)
	GetImageURLs(ctx context.Context, listingID string) ([]string, error)
}
