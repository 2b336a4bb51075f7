package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const publicHost = "https://storage.googleapis.com"

// ErrNotObjectURL signals a URL that does not point into this client's bucket.
var ErrNotObjectURL = errors.New("url does not reference a bucket object")

// Upload streams body into the default bucket under objectName and returns
// the public retrieval URL. The object name is used verbatim, callers own
// path namespacing.
func (c *Client) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	if c == nil || c.tokenSource == nil {
		return "", errors.New("gcs client not initialized")
	}
	if strings.TrimSpace(objectName) == "" {
		return "", errors.New("object name is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf(
		"%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		publicHost,
		url.PathEscape(c.defaultBucket),
		url.QueryEscape(objectName),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return "", fmt.Errorf("gcs upload failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return "", fmt.Errorf("gcs upload failed: %s", resp.Status)
	}

	return c.ObjectURL(objectName), nil
}

// DeleteObject removes the named object from the default bucket. Deleting an
// object that is already gone returns nil.
func (c *Client) DeleteObject(ctx context.Context, objectName string) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if strings.TrimSpace(objectName) == "" {
		return errors.New("object name is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s",
		publicHost,
		url.PathEscape(c.defaultBucket),
		url.PathEscape(objectName),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("gcs delete failed: %s", resp.Status)
	}
}

// ObjectURL builds the public retrieval URL for an object in the default bucket.
func (c *Client) ObjectURL(objectName string) string {
	escaped := strings.Join(escapeSegments(objectName), "/")
	return fmt.Sprintf("%s/%s/%s", publicHost, url.PathEscape(c.defaultBucket), escaped)
}

// ParseObjectURL resolves a stored retrieval URL back to the object name it
// references, the inverse of ObjectURL for this client's bucket.
func (c *Client) ParseObjectURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing object url: %w", err)
	}
	if parsed.Host != "storage.googleapis.com" {
		return "", ErrNotObjectURL
	}

	trimmed := strings.TrimPrefix(parsed.Path, "/")
	bucket, object, found := strings.Cut(trimmed, "/")
	if !found || object == "" {
		return "", ErrNotObjectURL
	}
	if bucket != c.defaultBucket {
		return "", ErrNotObjectURL
	}

	unescaped, err := url.PathUnescape(object)
	if err != nil {
		return "", fmt.Errorf("unescaping object name: %w", err)
	}
	return unescaped, nil
}

func escapeSegments(objectName string) []string {
	segments := strings.Split(objectName, "/")
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		out = append(out, url.PathEscape(s))
	}
	return out
}
