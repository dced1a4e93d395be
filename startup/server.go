package startup

import (
	"context"
	"fmt"
	"github.com/go-redis/redis"
	"github.com/gorilla/mux"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
	"log"
	"net/http"
	"os"
	"os/signal"
	"pg_service/cache"
	"pg_service/casbinAuthorization"
	"pg_service/domain"
	"pg_service/handlers"
	"pg_service/service"
	"pg_service/startup/config"
	"pg_service/storage"
	"pg_service/store"
	"syscall"
	"time"
)

type Server struct {
	config *config.Config
}

var Logger = logrus.New()

const (
	LogFilePath = "/app/logs/pg.log"
)

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Data["id"] = generateUniqueID()

	msg := fmt.Sprintf("[%s] [%s] [%s] %s\n",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		entry.Level,
		entry.Data["id"],
		entry.Message,
	)

	return []byte(msg), nil
}

func generateUniqueID() string {
	return fmt.Sprintf("ID-%d", time.Now().UnixNano())
}

func initLogger() {
	writer, err := rotatelogs.New(
		LogFilePath+"_%Y%m%d%H%M",
		rotatelogs.WithRotationTime(15*time.Minute),
	)
	if err != nil {
		Logger.Fatalf("Failed to create rotatelogs hook: %v", err)
	}
	Logger.SetOutput(writer)

	Logger.SetFormatter(&CustomFormatter{})
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) initMongoClient(httpClient *http.Client) *mongo.Client {
	client, err := store.GetClientWithHTTPConfig(server.config.PGDBHost, server.config.PGDBPort, httpClient)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initRedisClient() *redis.Client {
	return store.GetRedisClient(server.config.PGCacheHost, server.config.PGCachePort)
}

func (server *Server) initListingStore(client *mongo.Client, tracer trace.Tracer) domain.ListingStore {
	return store.NewListingMongoDBStore(client, tracer)
}

func (server *Server) initListingCache(client *redis.Client, tracer trace.Tracer) *cache.PGCache {
	return cache.New(client, Logger, tracer)
}

func (server *Server) initFileStorage(tracer trace.Tracer) *storage.FileStorage {
	images, err := storage.New(server.config.HDFSUri, Logger, tracer)
	if err != nil {
		log.Fatal(err)
	}
	return images
}

func (server *Server) initListingService(store domain.ListingStore, cache domain.ListingCache, images domain.ImageStorage) *application.ListingService {
	return application.NewListingService(store, cache, images, Logger)
}

func (server *Server) initListingHandler(service *application.ListingService, tracer trace.Tracer) *handlers.ListingHandler {
	return handlers.NewListingHandler(service, tracer)
}

func (server *Server) Start() {

	initLogger()

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	mongoClient := server.initMongoClient(httpClient)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		err := mongoClient.Disconnect(ctx)
		if err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}(mongoClient, context.Background())

	ctx := context.Background()
	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		log.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("pg_service")
	otel.SetTextMapPropagator(propagation.TraceContext{})

	redisClient := server.initRedisClient()

	images := server.initFileStorage(tracer)
	defer images.Close()
	if err := images.CreateDirectoriesStart(); err != nil {
		Logger.Errorf("Failed to prepare image root on HDFS: %v", err)
	}

	listingStore := server.initListingStore(mongoClient, tracer)
	if err := listingStore.Ping(ctx); err != nil {
		Logger.Errorf("Database unreachable at startup: %v", err)
	}
	listingCache := server.initListingCache(redisClient, tracer)
	listingService := server.initListingService(listingStore, listingCache, images)
	listingHandler := server.initListingHandler(listingService, tracer)

	server.start(listingHandler)
}

func (server *Server) start(listingHandler *handlers.ListingHandler) {
	router := mux.NewRouter()
	router.Use(MiddlewareContentTypeSet)

	casbinMiddleware, err := casbinAuthorization.InitializeCasbinMiddleware("./rbac_model.conf", "./policy.csv")
	if err != nil {
		log.Fatal(err)
	}
	router.Use(casbinMiddleware)

	listingHandler.Init(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", server.config.Port),
		Handler: router,
	}

	wait := time.Second * 15
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("pg_service"),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(rw, h)
	})
}
