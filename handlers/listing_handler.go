package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mitchellh/mapstructure"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path"
	"pg_service/domain"
	"pg_service/errors"
	"pg_service/service"
	"regexp"
	"strconv"
)

const (
	maxMultipartMemory = 10 << 20
	maxImageSize       = 5 << 20
)

type KeyListing struct{}

type ListingHandler struct {
	service *application.ListingService
	tracer  trace.Tracer
}

func NewListingHandler(service *application.ListingService, tracer trace.Tracer) *ListingHandler {
	return &ListingHandler{
		service: service,
		tracer:  tracer,
	}
}

func (handler *ListingHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.Use(MiddlewareCacheControlSet)

	getListings := router.Methods(http.MethodGet).Subrouter()
	getListings.HandleFunc("/api/pg", handler.GetAll)
	getListings.HandleFunc("/api/pg/search", handler.Search)
	getListings.HandleFunc("/api/pg/owner/{ownerID}", handler.GetByOwner)
	getListings.HandleFunc("/api/pg/{id}", handler.GetByID)
	getListings.HandleFunc("/api/pg/{id}/images", handler.GetGallery)
	getListings.HandleFunc("/api/pg/{id}/images/{name}", handler.GetImage)
	getListings.HandleFunc("/api/pg/{id}/views", handler.GetViews)

	postListing := router.Methods(http.MethodPost).Subrouter()
	postListing.HandleFunc("/api/pg", handler.Create)
	postListing.Use(handler.MiddlewareListingDeserialization)

	postReview := router.Methods(http.MethodPost).Subrouter()
	postReview.HandleFunc("/api/pg/{id}/reviews", handler.AddReview)

	postImage := router.Methods(http.MethodPost).Subrouter()
	postImage.HandleFunc("/api/pg/{id}/images", handler.UploadImage)

	updateListing := router.Methods(http.MethodPatch).Subrouter()
	updateListing.HandleFunc("/api/pg/{id}", handler.Update)

	deleteListing := router.Methods(http.MethodDelete).Subrouter()
	deleteListing.HandleFunc("/api/pg/{id}", handler.Delete)
}

// GetByID serves the detail page lookup. The database check runs before id
// validation so an outage always surfaces as 500, whatever the id looks like.
func (handler *ListingHandler) GetByID(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetByID")
	defer span.End()

	if err := handler.service.Ping(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Println("Database ping failed:", err)
		jsonError(errors.DatabaseConnError, writer, http.StatusInternalServerError)
		return
	}

	vars := mux.Vars(req)
	id, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	listing, err := handler.service.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if err.Error() == errors.PGNotFoundError {
			jsonError(errors.PGNotFoundError, writer, http.StatusNotFound)
			return
		}
		jsonError(errors.InternalServerError, writer, http.StatusInternalServerError)
		return
	}

	// The view counter never blocks a successful lookup
	if _, err := handler.service.CountView(ctx, vars["id"]); err != nil {
		log.Println(err)
	}

	jsonResponse(listing, writer)
}

func (handler *ListingHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetAll")
	defer span.End()

	listings, err := handler.service.GetAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = domain.Listings{}
	}
	jsonResponse(listings, writer)
}

func (handler *ListingHandler) Search(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Search")
	defer span.End()

	query := req.URL.Query()
	filter := domain.SearchFilter{
		City:   query.Get("city"),
		Gender: query.Get("gender"),
	}
	if maxRent := query.Get("maxRent"); maxRent != "" {
		value, err := strconv.ParseFloat(maxRent, 64)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			jsonError(errors.InvalidRequestFormat, writer, http.StatusBadRequest)
			return
		}
		filter.MaxRent = value
	}

	listings, err := handler.service.Search(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = domain.Listings{}
	}
	jsonResponse(listings, writer)
}

func (handler *ListingHandler) GetByOwner(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetByOwner")
	defer span.End()

	vars := mux.Vars(req)
	listings, err := handler.service.GetByOwner(ctx, vars["ownerID"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = domain.Listings{}
	}
	jsonResponse(listings, writer)
}

func (handler *ListingHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Create")
	defer span.End()

	listing := req.Context().Value(KeyListing{}).(*domain.Listing)

	saved, err := handler.service.Create(ctx, listing)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(saved, writer)
}

func (handler *ListingHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Update")
	defer span.End()

	vars := mux.Vars(req)
	id, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	existing, err := handler.service.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if err.Error() == errors.PGNotFoundError {
			jsonError(errors.PGNotFoundError, writer, http.StatusNotFound)
			return
		}
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}

	var updatePayload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&updatePayload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidRequestFormat, writer, http.StatusBadRequest)
		return
	}

	if verr := validateListingFields(updatePayload); verr != nil {
		jsonError(verr.Message, writer, http.StatusBadRequest)
		return
	}

	// Server-managed fields stay server-managed
	for key := range updatePayload {
		switch key {
		case "id", "ownerId", "rating", "reviews", "createdAt", "updatedAt":
			delete(updatePayload, key)
		}
	}

	if err := mapstructure.Decode(updatePayload, existing); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InternalServerError, writer, http.StatusInternalServerError)
		return
	}

	updated, err := handler.service.Update(ctx, existing)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if err.Error() == errors.NoPGUpdatedError {
			jsonError(errors.PGNotFoundError, writer, http.StatusNotFound)
			return
		}
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}

	jsonResponse(updated, writer)
}

func (handler *ListingHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Delete")
	defer span.End()

	vars := mux.Vars(req)
	id, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if err.Error() == errors.NoPGDeletedError {
			jsonError(errors.PGNotFoundError, writer, http.StatusNotFound)
			return
		}
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusOK)
}

func (handler *ListingHandler) AddReview(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.AddReview")
	defer span.End()

	vars := mux.Vars(req)
	id, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	review := &domain.Review{}
	if err := review.FromJSON(req.Body); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidRequestFormat, writer, http.StatusBadRequest)
		return
	}

	if err := review.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.ReviewValidationError, writer, http.StatusBadRequest)
		return
	}

	updated, err := handler.service.AddReview(ctx, id, review)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if err.Error() == errors.PGNotFoundError {
			jsonError(errors.PGNotFoundError, writer, http.StatusNotFound)
			return
		}
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(updated, writer)
}

func (handler *ListingHandler) UploadImage(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.UploadImage")
	defer span.End()

	vars := mux.Vars(req)
	id, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	if _, err := handler.service.Get(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if err.Error() == errors.PGNotFoundError {
			jsonError(errors.PGNotFoundError, writer, http.StatusNotFound)
			return
		}
		jsonError(errors.DatabaseError, writer, http.StatusInternalServerError)
		return
	}

	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidRequestFormat, writer, http.StatusBadRequest)
		return
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.MissingImageFileError, writer, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		jsonError(errors.ImageTooLargeError, writer, http.StatusBadRequest)
		return
	}

	content, err := ioutil.ReadAll(file)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InternalServerError, writer, http.StatusInternalServerError)
		return
	}

	imageName := fmt.Sprintf("%s%s", uuid.New().String(), path.Ext(header.Filename))
	if err := handler.service.UploadImage(ctx, vars["id"], imageName, content); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.StorageUnreachableError, writer, http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(map[string]string{
		"image": imageName,
		"url":   fmt.Sprintf("/api/pg/%s/images/%s", vars["id"], imageName),
	}, writer)
}

func (handler *ListingHandler) GetGallery(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetGallery")
	defer span.End()

	vars := mux.Vars(req)
	if _, err := primitive.ObjectIDFromHex(vars["id"]); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	urls, err := handler.service.GetImageURLs(ctx, vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.StorageUnreachableError, writer, http.StatusInternalServerError)
		return
	}
	if urls == nil {
		urls = []string{}
	}
	jsonResponse(urls, writer)
}

func (handler *ListingHandler) GetImage(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetImage")
	defer span.End()

	vars := mux.Vars(req)
	if _, err := primitive.ObjectIDFromHex(vars["id"]); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	image, err := handler.service.GetImage(ctx, vars["id"], vars["name"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if os.IsNotExist(err) {
			jsonError(errors.ImageNotFoundError, writer, http.StatusNotFound)
			return
		}
		jsonError(errors.StorageUnreachableError, writer, http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", http.DetectContentType(image))
	writer.Write(image)
}

type ViewsResponse struct {
	Views int64 `json:"views"`
}

func (handler *ListingHandler) GetViews(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.GetViews")
	defer span.End()

	vars := mux.Vars(req)
	if _, err := primitive.ObjectIDFromHex(vars["id"]); err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.InvalidPGIDError, writer, http.StatusBadRequest)
		return
	}

	views, err := handler.service.GetViews(ctx, vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		jsonError(errors.CacheUnavailableError, writer, http.StatusInternalServerError)
		return
	}

	jsonResponse(ViewsResponse{Views: views}, writer)
}

func (handler *ListingHandler) MiddlewareListingDeserialization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		listing := &domain.Listing{}
		if err := listing.FromJSON(h.Body); err != nil {
			log.Println(err)
			jsonError(errors.InvalidRequestFormat, rw, http.StatusBadRequest)
			return
		}

		if err := listing.Validate(); err != nil {
			log.Println(err)
			jsonError(errors.ValidationError, rw, http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(h.Context(), KeyListing{}, listing)
		h = h.WithContext(ctx)
		next.ServeHTTP(rw, h)
	})
}

type ValidationError struct {
	Message string `json:"message"`
}

func validateListingFields(fields bson.M) *ValidationError {
	if title, ok := fields["title"].(string); ok {
		if len(title) < 3 || len(title) > 100 {
			return &ValidationError{Message: "Title must be 3-100 characters long"}
		}
	}

	if price, ok := fields["price"].(float64); ok {
		if price <= 0 {
			return &ValidationError{Message: "Price should be a number over 0"}
		}
	}

	if gender, ok := fields["gender"].(string); ok {
		if gender != domain.Male && gender != domain.Female && gender != domain.Unisex {
			return &ValidationError{Message: "Gender should be either 'Male', 'Female' or 'Unisex'"}
		}
	}

	if roomType, ok := fields["roomType"].(string); ok {
		if roomType != domain.SingleRoom && roomType != domain.DoubleSharing && roomType != domain.TripleSharing {
			return &ValidationError{Message: "RoomType should be either 'Single Room', 'Double Sharing' or 'Triple Sharing'"}
		}
	}

	if city, ok := fields["city"].(string); ok {
		cityRegex := regexp.MustCompile(`^[a-zA-Z]+(?: [a-zA-Z]+)*$`)
		if !cityRegex.MatchString(city) {
			return &ValidationError{Message: "Invalid city format. It must contain only letters"}
		}
	}

	return nil
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MiddlewareCacheControlSet marks every listing API response as
// non-cacheable so the detail page always sees fresh data.
func MiddlewareCacheControlSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		rw.Header().Set("Pragma", "no-cache")
		rw.Header().Set("Expires", "0")
		next.ServeHTTP(rw, h)
	})
}
