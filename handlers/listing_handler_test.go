package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"pg_service/domain"
	"pg_service/errors"
	"pg_service/handlers"
	"pg_service/service"
	"strings"
	"testing"
	"time"
)

const knownID = "657f1f77bcf86cd799439011"

func newTestRouter(store *MockListingStore, cache *MockListingCache, storage *MockImageStorage) *mux.Router {
	listingService := application.NewListingService(store, cache, storage, logrus.New())
	handler := handlers.NewListingHandler(listingService, trace.NewNoopTracerProvider().Tracer("test"))
	router := mux.NewRouter()
	handler.Init(router)
	return router
}

func storedListing() *domain.Listing {
	id, _ := primitive.ObjectIDFromHex(knownID)
	return &domain.Listing{
		ID:       id,
		Title:    "Sunrise Residency PG",
		Location: "Koramangala 5th Block",
		Price:    8500,
		Gender:   domain.Male,
		RoomType: domain.DoubleSharing,
		Address:  "121, 5th Block, Koramangala",
		City:     "Bangalore",
		Rating:   4.2,
		Reviews: []domain.Review{
			{UserName: "Rahul", Rating: 4, Comment: "Good", CreatedAt: time.Now()},
		},
		OwnerID: "657f1f77bcf86cd799439100",
	}
}

func errorBody(t *testing.T, recorder *httptest.ResponseRecorder) string {
	var body map[string]string
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body["error"]
}

func TestGetByID_DatabaseDownBeatsBadID(t *testing.T) {
	store := new(MockListingStore)
	store.On("Ping", mock.Anything).Return(fmt.Errorf("server selection timeout"))
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/not-a-valid-id", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, errors.DatabaseConnError, errorBody(t, recorder))
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetByID_MalformedID(t *testing.T) {
	store := new(MockListingStore)
	store.On("Ping", mock.Anything).Return(nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/not-a-valid-id", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errors.InvalidPGIDError, errorBody(t, recorder))
	// A malformed id never reaches the store.
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)

	assert.Equal(t, "no-cache, no-store, must-revalidate", recorder.Header().Get("Cache-Control"))
}

func TestGetByID_UnknownID(t *testing.T) {
	store := new(MockListingStore)
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Get", mock.Anything, primitive.NilObjectID).Return(nil, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/000000000000000000000000", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, errors.PGNotFoundError, errorBody(t, recorder))
}

func TestGetByID_Success(t *testing.T) {
	store := new(MockListingStore)
	cache := new(MockListingCache)
	listing := storedListing()
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Get", mock.Anything, listing.ID).Return(listing, nil)
	cache.On("IncrementViews", mock.Anything, knownID).Return(int64(12), nil)
	router := newTestRouter(store, cache, new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/"+knownID, nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body domain.Listing
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Sunrise Residency PG", body.Title)
	assert.Equal(t, knownID, body.ID.Hex())

	assert.Equal(t, "no-cache, no-store, must-revalidate", recorder.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", recorder.Header().Get("Pragma"))
	assert.Equal(t, "0", recorder.Header().Get("Expires"))

	cache.AssertCalled(t, "IncrementViews", mock.Anything, knownID)
}

func TestGetByID_ViewCounterFailureDoesNotBlock(t *testing.T) {
	store := new(MockListingStore)
	cache := new(MockListingCache)
	listing := storedListing()
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Get", mock.Anything, listing.ID).Return(listing, nil)
	cache.On("IncrementViews", mock.Anything, knownID).Return(int64(0), fmt.Errorf("redis down"))
	router := newTestRouter(store, cache, new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/"+knownID, nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestGetAll_EmptyStoreServesEmptyArray(t *testing.T) {
	store := new(MockListingStore)
	store.On("GetAll", mock.Anything).Return(nil, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", strings.TrimSpace(recorder.Body.String()))
}

func TestSearch_BuildsFilterFromQuery(t *testing.T) {
	store := new(MockListingStore)
	expected := domain.SearchFilter{City: "Pune", Gender: "Female", MaxRent: 9000}
	store.On("Search", mock.Anything, expected).Return(domain.Listings{storedListing()}, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/search?city=Pune&gender=Female&maxRent=9000", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	store.AssertExpectations(t)
}

func TestSearch_BadMaxRent(t *testing.T) {
	store := new(MockListingStore)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/search?maxRent=cheap", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errors.InvalidRequestFormat, errorBody(t, recorder))
	store.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGetByOwner(t *testing.T) {
	store := new(MockListingStore)
	store.On("GetByOwner", mock.Anything, "657f1f77bcf86cd799439100").Return(domain.Listings{storedListing()}, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/owner/657f1f77bcf86cd799439100", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body []domain.Listing
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body, 1)
}

func TestCreate_Valid(t *testing.T) {
	store := new(MockListingStore)
	saved := storedListing()
	store.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Listing")).Return(saved, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	payload := `{
		"title": "Sunrise Residency PG",
		"location": "Koramangala 5th Block",
		"price": 8500,
		"gender": "Male",
		"roomType": "Double Sharing",
		"address": "121, 5th Block, Koramangala",
		"city": "Bangalore",
		"ownerId": "657f1f77bcf86cd799439100"
	}`

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/pg", strings.NewReader(payload))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var body domain.Listing
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Sunrise Residency PG", body.Title)
	store.AssertExpectations(t)
}

func TestCreate_MalformedBody(t *testing.T) {
	store := new(MockListingStore)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/pg", strings.NewReader(`{"title": }`))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errors.InvalidRequestFormat, errorBody(t, recorder))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreate_ValidationFailure(t *testing.T) {
	store := new(MockListingStore)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	// Missing city and owner.
	payload := `{
		"title": "Sunrise Residency PG",
		"location": "Koramangala 5th Block",
		"price": 8500,
		"gender": "Male",
		"roomType": "Double Sharing",
		"address": "121, 5th Block, Koramangala"
	}`

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/pg", strings.NewReader(payload))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errors.ValidationError, errorBody(t, recorder))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestUpdate_MergesOntoExisting(t *testing.T) {
	store := new(MockListingStore)
	existing := storedListing()
	store.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(listing *domain.Listing) bool {
		// Price merged, rating stays server-managed.
		return listing.Price == 9000 &&
			listing.Rating == 4.2 &&
			listing.Title == "Sunrise Residency PG"
	})).Return(existing, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	payload := `{"price": 9000, "rating": 1}`

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPatch, "/api/pg/"+knownID, strings.NewReader(payload))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	store.AssertExpectations(t)
}

func TestUpdate_RejectsBadFieldValues(t *testing.T) {
	store := new(MockListingStore)
	existing := storedListing()
	store.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	payload := `{"gender": "Mixed"}`

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPatch, "/api/pg/"+knownID, strings.NewReader(payload))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_UnknownListing(t *testing.T) {
	store := new(MockListingStore)
	store.On("Get", mock.Anything, primitive.NilObjectID).Return(nil, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPatch, "/api/pg/000000000000000000000000", strings.NewReader(`{"price": 9000}`))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, errors.PGNotFoundError, errorBody(t, recorder))
}

func TestDelete(t *testing.T) {
	store := new(MockListingStore)
	id, _ := primitive.ObjectIDFromHex(knownID)
	store.On("Delete", mock.Anything, id).Return(nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/api/pg/"+knownID, nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestDelete_UnknownListing(t *testing.T) {
	store := new(MockListingStore)
	store.On("Delete", mock.Anything, primitive.NilObjectID).Return(fmt.Errorf(errors.NoPGDeletedError))
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/api/pg/000000000000000000000000", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, errors.PGNotFoundError, errorBody(t, recorder))
}

func TestAddReview_RecomputesAggregateRating(t *testing.T) {
	store := new(MockListingStore)
	existing := storedListing()
	store.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	// (4 + 5) / 2 = 4.5
	store.On("AddReview", mock.Anything, existing.ID, mock.AnythingOfType("*domain.Review"), 4.5).Return(existing, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	payload := `{
		"userId": "6580a2b4cf86cd7994390000",
		"userName": "Sneha",
		"rating": 5,
		"comment": "Feels like a hotel."
	}`

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/pg/"+knownID+"/reviews", strings.NewReader(payload))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	store.AssertExpectations(t)
}

func TestAddReview_RejectsInvalidRating(t *testing.T) {
	store := new(MockListingStore)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	payload := `{
		"userId": "6580a2b4cf86cd7994390000",
		"userName": "Sneha",
		"rating": 0,
		"comment": "No stars."
	}`

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/pg/"+knownID+"/reviews", strings.NewReader(payload))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errors.ReviewValidationError, errorBody(t, recorder))
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUploadImage(t *testing.T) {
	store := new(MockListingStore)
	cache := new(MockListingCache)
	storage := new(MockImageStorage)
	existing := storedListing()
	store.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	storage.On("SaveImage", mock.Anything, knownID, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	cache.On("DelUrls", mock.Anything, knownID).Return(nil)
	router := newTestRouter(store, cache, storage)

	var buffer bytes.Buffer
	form := multipart.NewWriter(&buffer)
	part, err := form.CreateFormFile("image", "room.jpg")
	assert.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10})
	assert.NoError(t, err)
	assert.NoError(t, form.Close())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/pg/"+knownID+"/images", &buffer)
	request.Header.Set("Content-Type", form.FormDataContentType())
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.True(t, strings.HasSuffix(body["image"], ".jpg"))
	assert.True(t, strings.HasPrefix(body["url"], "/api/pg/"+knownID+"/images/"))
	storage.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUploadImage_MissingFile(t *testing.T) {
	store := new(MockListingStore)
	existing := storedListing()
	store.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	router := newTestRouter(store, new(MockListingCache), new(MockImageStorage))

	var buffer bytes.Buffer
	form := multipart.NewWriter(&buffer)
	assert.NoError(t, form.WriteField("caption", "no file here"))
	assert.NoError(t, form.Close())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/pg/"+knownID+"/images", &buffer)
	request.Header.Set("Content-Type", form.FormDataContentType())
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errors.MissingImageFileError, errorBody(t, recorder))
}

func TestGetGallery(t *testing.T) {
	store := new(MockListingStore)
	cache := new(MockListingCache)
	storage := new(MockImageStorage)
	urls := []string{"/api/pg/" + knownID + "/images/one.jpg"}
	cache.On("GetUrls", mock.Anything, knownID).Return(nil, fmt.Errorf("redis: nil"))
	storage.On("GetImageURLs", mock.Anything, knownID).Return(urls, nil)
	cache.On("PostUrls", mock.Anything, knownID, urls).Return(nil)
	router := newTestRouter(store, cache, storage)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/"+knownID+"/images", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body []string
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, urls, body)
}

func TestGetImage_ServesBinaryWithContentType(t *testing.T) {
	store := new(MockListingStore)
	cache := new(MockListingCache)
	storage := new(MockImageStorage)
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
	cache.On("GetImage", mock.Anything, knownID, "one.jpg").Return(nil, fmt.Errorf("redis: nil"))
	storage.On("GetImage", mock.Anything, knownID, "one.jpg").Return(jpeg, nil)
	cache.On("PostImage", mock.Anything, knownID, "one.jpg", jpeg).Return(nil)
	router := newTestRouter(store, cache, storage)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/"+knownID+"/images/one.jpg", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/jpeg", recorder.Header().Get("Content-Type"))
	assert.Equal(t, jpeg, recorder.Body.Bytes())
}

func TestGetImage_NotFound(t *testing.T) {
	store := new(MockListingStore)
	cache := new(MockListingCache)
	storage := new(MockImageStorage)
	missing := &os.PathError{Op: "open", Path: "/pg/images/" + knownID + "/one.jpg", Err: os.ErrNotExist}
	cache.On("GetImage", mock.Anything, knownID, "one.jpg").Return(nil, fmt.Errorf("redis: nil"))
	storage.On("GetImage", mock.Anything, knownID, "one.jpg").Return(nil, missing)
	router := newTestRouter(store, cache, storage)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/"+knownID+"/images/one.jpg", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, errors.ImageNotFoundError, errorBody(t, recorder))
}

func TestGetViews(t *testing.T) {
	store := new(MockListingStore)
	cache := new(MockListingCache)
	cache.On("GetViews", mock.Anything, knownID).Return(int64(42), nil)
	router := newTestRouter(store, cache, new(MockImageStorage))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/pg/"+knownID+"/views", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]int64
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body["views"])
}
