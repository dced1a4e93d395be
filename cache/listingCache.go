package cache

import (
	"context"
	"encoding/json"
	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"time"
)

type PGCache struct {
	cli    *redis.Client
	logger *logrus.Logger
	tracer trace.Tracer
}

func New(client *redis.Client, logger *logrus.Logger, tracer trace.Tracer) *PGCache {
	return &PGCache{
		cli:    client,
		logger: logger,
		tracer: tracer,
	}
}

// Check connection function
func (pc *PGCache) Ping() {
	val, _ := pc.cli.Ping().Result()
	pc.logger.Println(val)
}

// Set key-value pair with default expiration
func (pc *PGCache) PostImage(ctx context.Context, listingID string, imageName string, image []byte) error {
	ctx, span := pc.tracer.Start(ctx, "PGCache.PostImage")
	defer span.End()

	err := pc.cli.Set(constructImageKey(listingID, imageName), image, 30*time.Minute).Err()
	if err == nil {
		pc.logger.Println("Cached image bytes")
	}
	return err
}

// Get value by key
func (pc *PGCache) GetImage(ctx context.Context, listingID string, imageName string) ([]byte, error) {
	ctx, span := pc.tracer.Start(ctx, "PGCache.GetImage")
	defer span.End()

	value, err := pc.cli.Get(constructImageKey(listingID, imageName)).Bytes()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	pc.logger.Println("Cache hit - get image")
	return value, nil
}

func (pc *PGCache) PostUrls(ctx context.Context, listingID string, urls []string) error {
	ctx, span := pc.tracer.Start(ctx, "PGCache.PostUrls")
	defer span.End()

	jsonValue, err := json.Marshal(urls)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		pc.logger.Println(err)
		return err
	}

	err = pc.cli.Set(constructUrlsKey(listingID), jsonValue, 30*time.Minute).Err()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		pc.logger.Println(err)
		return err
	}

	pc.logger.Println("Cached gallery urls")
	return nil
}

func (pc *PGCache) GetUrls(ctx context.Context, listingID string) ([]string, error) {
	ctx, span := pc.tracer.Start(ctx, "PGCache.GetUrls")
	defer span.End()

	jsonValue, err := pc.cli.Get(constructUrlsKey(listingID)).Result()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var urls []string
	err = json.Unmarshal([]byte(jsonValue), &urls)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		pc.logger.Println(err)
		return nil, err
	}

	pc.logger.Println("Cache hit - get gallery urls")
	return urls, nil
}

func (pc *PGCache) DelUrls(ctx context.Context, listingID string) error {
	ctx, span := pc.tracer.Start(ctx, "PGCache.DelUrls")
	defer span.End()

	return pc.cli.Del(constructUrlsKey(listingID)).Err()
}

// View counters have no expiration, the count survives restarts.
func (pc *PGCache) IncrementViews(ctx context.Context, listingID string) (int64, error) {
	ctx, span := pc.tracer.Start(ctx, "PGCache.IncrementViews")
	defer span.End()

	count, err := pc.cli.Incr(constructViewsKey(listingID)).Result()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return count, nil
}

func (pc *PGCache) GetViews(ctx context.Context, listingID string) (int64, error) {
	ctx, span := pc.tracer.Start(ctx, "PGCache.GetViews")
	defer span.End()

	count, err := pc.cli.Get(constructViewsKey(listingID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return count, nil
}

// Check if given key exists
func (pc *PGCache) Exists(listingID string, imageName string) bool {
	cnt, err := pc.cli.Exists(constructImageKey(listingID, imageName)).Result()
	if cnt == 1 {
		return true
	}
	if err != nil {
		return false
	}
	return false
}
