// Package media is the project media library: generated and uploaded images
// live in object storage, and their catalog entries feed the enricher so
// generated code references exact hosted URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Entry is one catalog row handed to the enricher. URL must be usable
// verbatim in generated code.
type Entry struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
}

// Library lists and stores media for one project.
type Library interface {
	List(ctx context.Context, projectID string) ([]Entry, error)
	Put(ctx context.Context, projectID, name, contentType string, r io.Reader, size int64) (Entry, error)
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBase is the URL prefix under which objects are served; catalog
	// URLs are built from it.
	PublicBase string
}

type S3Library struct {
	client     *minio.Client
	bucketName string
	region     string
	publicBase string
	initOnce   sync.Once
	initErr    error
}

func NewS3Library(cfg S3Config) (*S3Library, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("media: s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("media: s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("media: s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBase), "/")
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("media: init s3 client: %w", err)
	}

	return &S3Library{
		client:     client,
		bucketName: bucket,
		region:     region,
		publicBase: publicBase,
	}, nil
}

func (l *S3Library) ensureBucket(ctx context.Context) error {
	if l == nil || l.client == nil {
		return fmt.Errorf("media: library is nil")
	}
	l.initOnce.Do(func() {
		exists, err := l.client.BucketExists(ctx, l.bucketName)
		if err != nil {
			l.initErr = err
			return
		}
		if exists {
			return
		}
		l.initErr = l.client.MakeBucket(ctx, l.bucketName, minio.MakeBucketOptions{Region: l.region})
	})
	return l.initErr
}

func (l *S3Library) objectURL(key string) string {
	return l.publicBase + "/" + key
}

// Put stores one media object under the project prefix and returns its
// catalog entry.
func (l *S3Library) Put(ctx context.Context, projectID, name, contentType string, r io.Reader, size int64) (Entry, error) {
	projectID = strings.TrimSpace(projectID)
	name = strings.TrimSpace(name)
	if projectID == "" {
		return Entry{}, fmt.Errorf("media: project id is required")
	}
	if name == "" {
		return Entry{}, fmt.Errorf("media: name is required")
	}
	if err := l.ensureBucket(ctx); err != nil {
		return Entry{}, fmt.Errorf("media: ensure bucket: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := projectID + "/" + name
	if _, err := l.client.PutObject(ctx, l.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return Entry{}, err
	}
	return Entry{Name: name, URL: l.objectURL(key), ContentType: contentType}, nil
}

// List returns the catalog for one project, name-sorted by the backend's
// listing order.
func (l *S3Library) List(ctx context.Context, projectID string) ([]Entry, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("media: project id is required")
	}
	if err := l.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("media: ensure bucket: %w", err)
	}

	prefix := projectID + "/"
	var out []Entry
	for obj := range l.client.ListObjects(ctx, l.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, Entry{
			Name: path.Base(obj.Key),
			URL:  l.objectURL(obj.Key),
		})
	}
	return out, nil
}
