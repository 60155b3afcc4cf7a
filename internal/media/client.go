// Package media talks to the external image host. Uploaded files live on
// the host, not on this server; only the returned URL is stored.
package media

import (
	"context"
	"fmt"
	"os"
	"time"

	"resty.dev/v3"

	"ripple/internal/middleware"
	"ripple/internal/observability"
)

// Uploader is the part of the client the services depend on.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Remove(ctx context.Context, url string)
}

type Client struct {
	client    *resty.Client
	uploadURL string
	deleteURL string
	apiKey    string
}

type uploadResponse struct {
	URL string `json:"url"`
}

func NewClient(uploadURL, deleteURL, apiKey string) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	})

	return &Client{
		client:    client,
		uploadURL: uploadURL,
		deleteURL: deleteURL,
		apiKey:    apiKey,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Upload sends the file at localPath to the image host and returns the
// hosted URL. The local file is a temp copy of a multipart upload and is
// removed whether or not the upload succeeds.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove temp upload", "path", localPath, "error", err)
		}
	}()

	res, err := c.client.R().
		WithContext(ctx).
		SetAuthToken(c.apiKey).
		SetFile("image", localPath).
		SetResult(&uploadResponse{}).
		Post(c.uploadURL)
	if err != nil {
		observability.MediaUploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("media upload: %w", err)
	}
	if res.IsError() {
		observability.MediaUploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("media upload: host returned %s", res.Status())
	}

	hosted := res.Result().(*uploadResponse).URL
	if hosted == "" {
		observability.MediaUploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("media upload: host returned no url")
	}

	observability.MediaUploads.WithLabelValues("success").Inc()
	return hosted, nil
}

// Remove asks the host to delete a previously uploaded image. Failures are
// logged and swallowed: a stale image on the host never fails the request
// that replaced it.
func (c *Client) Remove(ctx context.Context, url string) {
	if url == "" || c.deleteURL == "" {
		return
	}

	res, err := c.client.R().
		WithContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(map[string]string{"url": url}).
		Post(c.deleteURL)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "media delete failed", "url", url, "error", err)
		return
	}
	if res.IsError() {
		middleware.Logger.WarnContext(ctx, "media delete rejected", "url", url, "status", res.Status())
	}
}
