package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/sirupsen/logrus"
	"os"
	"pg_service/page"
	"time"
)

// pgview renders one PG detail page in the terminal. It is the development
// shell for the page package: point it at a running pg_service with -api, or
// run it without flags to browse the bundled fixtures offline.
func main() {
	id := flag.String("id", "1", "Listing id to open")
	api := flag.String("api", "", "Base URL of a running pg_service, empty for fixtures")
	token := flag.String("token", "", "Bearer token, empty browses as a guest")
	fallback := flag.Bool("fallback", true, "Show fixture data when the API fetch fails")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	notifier := page.NewLogNotifier(logger)

	var auth page.AuthProvider = page.StaticAuthProvider(false)
	if *token != "" {
		tokenAuth, err := page.NewTokenAuthProvider(*token, []byte(os.Getenv("SECRET_KEY")))
		if err != nil {
			logger.Fatalf("Cannot initialize token verifier: %v", err)
		}
		auth = tokenAuth
	}

	fixtures := page.NewFixtureSource()
	var source page.ListingSource = fixtures
	var fallbackSource page.FallbackSource
	if *api != "" {
		source = page.NewAPIListingSource(*api, nil)
		if *fallback {
			fallbackSource = fixtures
		}
	}

	detailPage := page.NewDetailPage(source, auth, notifier, fallbackSource)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	detailPage.Load(ctx, *id)

	render(detailPage)
}

func render(detailPage *page.DetailPage) {
	switch detailPage.Stage() {
	case page.StageLoading:
		fmt.Println("Loading...")
	case page.StageError:
		fmt.Println(detailPage.Err())
	case page.StageDetail:
		if detailPage.Err() != "" {
			fmt.Printf("! %s (showing sample data)\n\n", detailPage.Err())
		}
		renderDetail(detailPage)
	}
}

func renderDetail(detailPage *page.DetailPage) {
	view := detailPage.View()

	fmt.Printf("%s\n", view.Title)
	fmt.Printf("%s, %s\n", view.Location, view.City)
	fmt.Printf("Rs %.0f/month | %.1f stars (%d reviews) | %s | %s\n\n",
		view.Price, view.Rating, len(view.Reviews), view.Gender, view.Address)

	fmt.Println(view.Description)

	fmt.Printf("\nPhotos (%d, showing #%d):\n", len(view.Images), detailPage.CurrentImageIndex()+1)
	for i, image := range view.Images {
		marker := "  "
		if i == detailPage.CurrentImageIndex() {
			marker = "> "
		}
		fmt.Printf("%s%s\n", marker, image)
	}

	fmt.Println("\nAmenities:")
	for _, amenity := range view.Amenities {
		fmt.Printf("  [%s] %s\n", amenity.Icon, amenity.Name)
	}

	fmt.Println("\nRoom types:")
	for _, roomType := range view.RoomTypes {
		fmt.Printf("  %s - Rs %.0f/month (%d available)\n", roomType.Type, roomType.Price, roomType.Available)
	}

	fmt.Println("\nHouse rules:")
	for _, rule := range view.Rules {
		fmt.Printf("  - %s\n", rule)
	}

	fmt.Println("\nNearby:")
	for _, place := range view.NearbyPlaces {
		fmt.Printf("  - %s\n", place)
	}

	fmt.Printf("\nOwner: %s (%s)\n", view.Owner.Name, view.Owner.Contact)
	fmt.Printf("Member since %s. %s.\n", view.Owner.MemberSince, view.Owner.ResponseTime)

	if len(view.Reviews) > 0 {
		fmt.Println("\nReviews:")
		for _, review := range view.Reviews {
			fmt.Printf("  %d. %s rated %.1f on %s\n     %s\n",
				review.Index, review.UserName, review.Rating, review.Date, review.Comment)
		}
	}
}
