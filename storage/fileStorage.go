package storage

import (
	"context"
	"fmt"
	"github.com/colinmarc/hdfs/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"io/ioutil"
	"os"
	"path"
)

const hdfsRoot = "/pg/images"

type FileStorage struct {
	client *hdfs.Client
	logger *logrus.Logger
	tracer trace.Tracer
}

func New(hdfsUri string, logger *logrus.Logger, tracer trace.Tracer) (*FileStorage, error) {
	client, err := hdfs.New(hdfsUri)
	if err != nil {
		logger.Println(err)
		return nil, err
	}

	// Return storage handler with logger and HDFS client
	return &FileStorage{
		client: client,
		logger: logger,
		tracer: tracer,
	}, nil
}

func (fs *FileStorage) Close() {
	// Close all underlying connections to the HDFS server
	fs.client.Close()
}

func (fs *FileStorage) CreateDirectoriesStart() error {
	err := fs.client.MkdirAll(hdfsRoot, 0644)
	if err != nil {
		fs.logger.Println(err)
		return err
	}

	return nil
}

func (fs *FileStorage) CreateDirectory(listingID string) error {
	folderPath := path.Join(hdfsRoot, listingID)
	err := fs.client.MkdirAll(folderPath, 0644)
	if err != nil {
		fs.logger.Printf("Error creating directory %s: %v", folderPath, err)
		return err
	}
	return nil
}

func (fs *FileStorage) SaveImage(ctx context.Context, listingID string, imageName string, content []byte) error {
	ctx, span := fs.tracer.Start(ctx, "FileStorage.SaveImage")
	defer span.End()

	imagePath := path.Join(hdfsRoot, listingID, imageName)

	if err := fs.CreateDirectory(listingID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	file, err := fs.client.Create(imagePath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Printf("Error creating file %s: %v", imagePath, err)
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			span.SetStatus(codes.Error, closeErr.Error())
			fs.logger.Printf("Error closing file: %v", closeErr)
		}
	}()

	if _, err := file.Write(content); err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Printf("Error writing image content: %v", err)
		return err
	}

	return nil
}

// GetImageURLs lists the gallery of one listing as API paths the page can
// render directly.
func (fs *FileStorage) GetImageURLs(ctx context.Context, listingID string) ([]string, error) {
	ctx, span := fs.tracer.Start(ctx, "FileStorage.GetImageURLs")
	defer span.End()

	folderPath := path.Join(hdfsRoot, listingID)
	urls := []string{}

	callbackFunc := func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			imageName := path.Base(filePath)
			urls = append(urls, fmt.Sprintf("/api/pg/%s/images/%s", listingID, imageName))
		}
		return nil
	}

	err := fs.client.Walk(folderPath, callbackFunc)
	if err != nil {
		// A listing without uploads has no folder yet
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Println(err)
		return nil, err
	}

	return urls, nil
}

func (fs *FileStorage) GetImage(ctx context.Context, listingID string, imageName string) ([]byte, error) {
	ctx, span := fs.tracer.Start(ctx, "FileStorage.GetImage")
	defer span.End()

	fullPath := path.Join(hdfsRoot, listingID, imageName)

	file, err := fs.client.Open(fullPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Println(err)
		return nil, err
	}
	defer file.Close()

	imageData, err := ioutil.ReadAll(file)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Println(err)
		return nil, fmt.Errorf("error reading file: %v", err)
	}

	return imageData, nil
}
