// Package storage provides the S3-compatible object storage client that
// holds recipe images. It wraps the AWS SDK v2 and is configured for
// path-style access so it works against MinIO/CEPH endpoints too.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"receitapress/internal/imaging"
)

// Recipe images are immutable once uploaded, so browsers may cache them
// for a year.
const imageCacheControl = "max-age=31536000"

// Client wraps an S3 client for recipe image operations on a single
// public bucket.
type Client struct {
	s3        *s3.Client
	http      *resty.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for public files
}

// New creates an S3 storage client with static credentials and path-style
// addressing. Returns (nil, nil) if endpoint or credentials are empty,
// allowing the app to start without storage; image production then falls
// back to provider URLs.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		http:      resty.New().SetTimeout(30 * time.Second),
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload stores an object in the recipe bucket with public-read ACL so it
// can be served directly.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(imageCacheControl),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Delete removes an object from the recipe bucket.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// StoreFromURL downloads an image, re-encodes it as the standard recipe
// photo plus a listing thumbnail, and uploads both under a fresh key.
// It returns the stable public URL of the full photo; the thumbnail
// lives next to it at ThumbKey and is best-effort. The name parameter
// is only a hint for logs and diagnostics; keys are always UUID-based.
func (c *Client) StoreFromURL(ctx context.Context, imageURL, name string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("download image %q: %w", name, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("download image %q: status %d", name, resp.StatusCode())
	}

	photo, err := imaging.RecipePhoto(resp.Body())
	if err != nil {
		return "", fmt.Errorf("re-encode image %q: %w", name, err)
	}

	key := fmt.Sprintf("recipes/%s.jpg", uuid.New())
	if err := c.Upload(ctx, key, photo.ContentType, bytes.NewReader(photo.Data), int64(len(photo.Data))); err != nil {
		return "", err
	}

	// The full photo is what recipes reference; a missing thumbnail only
	// costs bandwidth on the listing.
	if thumb, err := imaging.Thumbnail(resp.Body()); err != nil {
		slog.Warn("thumbnail encode failed", "name", name, "error", err)
	} else if err := c.Upload(ctx, ThumbKey(key), thumb.ContentType, bytes.NewReader(thumb.Data), int64(len(thumb.Data))); err != nil {
		slog.Warn("thumbnail upload failed", "key", ThumbKey(key), "error", err)
	}

	return c.FileURL(key), nil
}

// DeleteImage removes a stored recipe photo and its thumbnail given the
// photo's public URL. URLs pointing outside this storage (provider-hosted
// or placeholder images) are ignored.
func (c *Client) DeleteImage(ctx context.Context, rawURL string) error {
	key, ok := c.ExtractKey(rawURL)
	if !ok {
		return nil
	}
	if err := c.Delete(ctx, key); err != nil {
		return err
	}
	// Thumbnails may be missing for images whose encode failed.
	if err := c.Delete(ctx, ThumbKey(key)); err != nil {
		slog.Warn("thumbnail delete failed", "key", ThumbKey(key), "error", err)
	}
	return nil
}

// ThumbKey returns the thumbnail object key for a photo key:
// recipes/<id>.jpg becomes recipes/<id>-thumb.jpg.
func ThumbKey(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "-thumb" + ext
}

// FileURL returns the public URL for a file in the recipe bucket. Uses
// the configured public URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// ExtractKey extracts the object key from a public file URL. Returns the
// key and true if the URL belongs to this storage, or ("", false) if it
// points elsewhere (provider-hosted or placeholder images).
func (c *Client) ExtractKey(rawURL string) (string, bool) {
	if c.publicURL != "" {
		prefix := c.publicURL + "/"
		if strings.HasPrefix(rawURL, prefix) {
			return rawURL[len(prefix):], true
		}
	}

	prefix := c.endpoint + "/" + c.bucket + "/"
	if strings.HasPrefix(rawURL, prefix) {
		return rawURL[len(prefix):], true
	}

	return "", false
}
