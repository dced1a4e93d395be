package cache

import (
	"fmt"
)

const (
	cacheImage = "image:%s:%s"
	cacheUrls  = "urls:%s"
	cacheViews = "views:%s"
)

func constructImageKey(listingID string, imageName string) string {
	return fmt.Sprintf(cacheImage, listingID, imageName)
}

func constructUrlsKey(listingID string) string {
	return fmt.Sprintf(cacheUrls, listingID)
}

func constructViewsKey(listingID string) string {
	return fmt.Sprintf(cacheViews, listingID)
}
