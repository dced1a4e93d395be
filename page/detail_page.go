package page

import (
	"context"
	"pg_service/domain"
	"pg_service/errors"
)

// ListingSource fetches one listing for the detail page.
type ListingSource interface {
	FetchListing(ctx context.Context, id string) (*domain.Listing, error)
}

// FallbackSource answers with canned data when the fetch fails. Production
// wiring passes nil, development wiring passes the fixture set.
type FallbackSource interface {
	Lookup(id string) *domain.Listing
}

type AuthProvider interface {
	IsAuthenticated() bool
}

type Notifier interface {
	Success(message string)
	Error(message string)
}

type Stage int

const (
	StageLoading Stage = iota
	StageError
	StageDetail
)

// DetailPage drives the PG detail screen through its three render stages.
// All methods must run on the same goroutine, the shell owning the page is
// its event loop.
type DetailPage struct {
	source   ListingSource
	fallback FallbackSource
	auth     AuthProvider
	notifier Notifier

	generation uint64
	loading    bool
	errMsg     string
	view       *domain.ListingView

	currentImageIndex int
	saved             bool
	showAuthModal     bool
	showBookingForm   bool
	showContactInfo   bool
	reviewText        string
}

func NewDetailPage(source ListingSource, auth AuthProvider, notifier Notifier, fallback FallbackSource) *DetailPage {
	return &DetailPage{
		source:   source,
		fallback: fallback,
		auth:     auth,
		notifier: notifier,
		loading:  true,
	}
}

// Load fetches a listing and formats it for display. Navigating to another
// listing while a fetch is in flight discards the older result.
func (p *DetailPage) Load(ctx context.Context, id string) {
	gen := p.beginLoad()
	listing, err := p.source.FetchListing(ctx, id)
	p.finishLoad(gen, id, listing, err)
}

func (p *DetailPage) beginLoad() uint64 {
	p.generation++
	p.loading = true
	p.errMsg = ""
	p.view = nil
	p.currentImageIndex = 0
	return p.generation
}

func (p *DetailPage) finishLoad(gen uint64, id string, listing *domain.Listing, err error) {
	if gen != p.generation {
		return
	}

	if err != nil {
		p.errMsg = errors.FetchPGFailedError
		p.notifier.Error(errors.FetchPGFailedError)
		if p.fallback != nil {
			if fixture := p.fallback.Lookup(id); fixture != nil {
				p.view = domain.FormatListing(fixture)
			}
		}
		p.loading = false
		return
	}

	p.view = domain.FormatListing(listing)
	p.loading = false
}

func (p *DetailPage) Stage() Stage {
	if p.loading {
		return StageLoading
	}
	if p.view == nil {
		return StageError
	}
	return StageDetail
}

func (p *DetailPage) NextImage() {
	if p.view == nil || len(p.view.Images) == 0 {
		return
	}
	p.currentImageIndex = (p.currentImageIndex + 1) % len(p.view.Images)
}

func (p *DetailPage) PrevImage() {
	if p.view == nil || len(p.view.Images) == 0 {
		return
	}
	count := len(p.view.Images)
	p.currentImageIndex = (p.currentImageIndex - 1 + count) % count
}

func (p *DetailPage) SelectImage(index int) {
	if p.view == nil || index < 0 || index >= len(p.view.Images) {
		return
	}
	p.currentImageIndex = index
}

// ToggleSave flips the shortlist flag. Unauthenticated users get the auth
// prompt instead.
func (p *DetailPage) ToggleSave() {
	if !p.auth.IsAuthenticated() {
		p.showAuthModal = true
		return
	}

	p.saved = !p.saved
	if p.saved {
		p.notifier.Success("PG saved to your shortlist")
	} else {
		p.notifier.Success("PG removed from your shortlist")
	}
}

func (p *DetailPage) BookNow() {
	if !p.auth.IsAuthenticated() {
		p.showAuthModal = true
		return
	}

	p.showBookingForm = true
	p.notifier.Success("Booking request started")
}

func (p *DetailPage) ContactOwner() {
	if !p.auth.IsAuthenticated() {
		p.showAuthModal = true
		return
	}
	if p.view == nil {
		return
	}

	p.showContactInfo = true
	p.notifier.Success("Owner contact: " + p.view.Owner.Contact)
}

func (p *DetailPage) SetReviewText(text string) {
	p.reviewText = text
}

func (p *DetailPage) SubmitReview() {
	if !p.auth.IsAuthenticated() {
		p.showAuthModal = true
		return
	}

	if p.reviewText == "" {
		p.notifier.Error("Review cannot be empty")
		return
	}

	p.notifier.Success("Review submitted")
	p.reviewText = ""
}

func (p *DetailPage) DismissAuthModal() {
	p.showAuthModal = false
}

func (p *DetailPage) CloseBookingForm() {
	p.showBookingForm = false
}

func (p *DetailPage) View() *domain.ListingView {
	return p.view
}

func (p *DetailPage) Loading() bool {
	return p.loading
}

func (p *DetailPage) Err() string {
	return p.errMsg
}

func (p *DetailPage) CurrentImageIndex() int {
	return p.currentImageIndex
}

func (p *DetailPage) Saved() bool {
	return p.saved
}

func (p *DetailPage) ShowAuthModal() bool {
	return p.showAuthModal
}

func (p *DetailPage) ShowBookingForm() bool {
	return p.showBookingForm
}

func (p *DetailPage) ShowContactInfo() bool {
	return p.showContactInfo
}

func (p *DetailPage) ReviewText() string {
	return p.reviewText
}
