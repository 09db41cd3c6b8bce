// Package media talks to the Cloudinary upload API.
package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotDeleted is returned when Cloudinary answers but does not confirm the
// deletion (for example "not found").
var ErrNotDeleted = errors.New("image not deleted")

// Config holds the Cloudinary account credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client deletes images from Cloudinary. Calls are made once, without retry.
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

type destroyResponse struct {
	Result string `json:"result"`
}

// NewClient creates a Client for cfg.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// DeleteImage destroys the image with publicID. It returns ErrNotDeleted when
// Cloudinary reports anything but "ok", and a wrapped transport or status
// error otherwise.
func (c *Client) DeleteImage(ctx context.Context, publicID string) error {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	var out destroyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"public_id": publicID,
			"timestamp": timestamp,
			"api_key":   c.cfg.APIKey,
			"signature": sign(publicID, timestamp, c.cfg.APISecret),
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/v1_1/%s/image/destroy", c.cfg.CloudName))
	if err != nil {
		return fmt.Errorf("cloudinary destroy request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("cloudinary destroy: unexpected status %d", resp.StatusCode())
	}
	if out.Result != "ok" {
		c.logger.Warn("cloudinary did not delete image",
			zap.String("public_id", publicID),
			zap.String("result", out.Result),
		)
		return fmt.Errorf("%w: result %q", ErrNotDeleted, out.Result)
	}

	c.logger.Info("image deleted", zap.String("public_id", publicID))
	return nil
}

// sign computes the Cloudinary request signature: the SHA-1 hex digest of
// the signed parameters, sorted by name and joined as a query string, followed
// by the API secret.
func sign(publicID, timestamp, secret string) string {
	sum := sha1.Sum([]byte("public_id=" + publicID + "&timestamp=" + timestamp + secret))
	return hex.EncodeToString(sum[:])
}
