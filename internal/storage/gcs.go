package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSGateway stores blobs as objects in a Google Cloud Storage bucket, one
// object per key under a fixed prefix.
type GCSGateway struct {
	client     *storage.Client
	bucketName string
}

const gcsObjectPrefix = "formbuilder/"

func NewGCSGateway(bucketName, credentialsPath string) (*GCSGateway, error) {
	ctx := context.Background()

	var client *storage.Client
	var err error

	if credentialsPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSGateway{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (g *GCSGateway) Get(key string) ([]byte, bool, error) {
	ctx := context.Background()
	obj := g.client.Bucket(g.bucketName).Object(gcsObjectPrefix + key)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read object for key %q: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read object for key %q: %w", key, err)
	}
	return data, true, nil
}

func (g *GCSGateway) Set(key string, data []byte) error {
	ctx := context.Background()
	obj := g.client.Bucket(g.bucketName).Object(gcsObjectPrefix + key)

	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write object for key %q: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer for key %q: %w", key, err)
	}
	return nil
}

func (g *GCSGateway) Close() error {
	return g.client.Close()
}
