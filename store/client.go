package store

import (
	"context"
	"fmt"
	"github.com/go-redis/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"net/http"
)

func GetClientWithHTTPConfig(host, port string, httpClient *http.Client) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%s/", host, port)
	optionsClient := options.Client().ApplyURI(uri).SetHTTPClient(httpClient)
	return mongo.Connect(context.TODO(), optionsClient)
}

func GetRedisClient(host, port string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})
}
