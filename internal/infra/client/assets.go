package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prime-insurance/claims-portal-bfa/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const assetService = "assets"

// maxAssetBytes caps brand image downloads.
const maxAssetBytes = 2 << 20

// AssetClient fetches same-origin static files (brand images) from the portal's asset host.
type AssetClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewAssetClient creates a new AssetClient.
func NewAssetClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *AssetClient {
	return &AssetClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		logger:     logger,
	}
}

type assetResult struct {
	body        []byte
	contentType string
}

// FetchAsset GETs path once. Any non-2xx status is an error; content type
// acceptance is left to the caller.
func (c *AssetClient) FetchAsset(ctx context.Context, path string) ([]byte, string, error) {
	ctx, span := tracer.Start(ctx, "AssetClient.FetchAsset")
	defer span.End()
	span.SetAttributes(attribute.String("asset.path", path))

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	result, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "image/*")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := fmt.Errorf("asset %s returned status %d", path, resp.StatusCode)
			// A missing asset says nothing about the asset host's health.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, resilience.Permanent(statusErr)
			}
			return nil, statusErr
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
		if err != nil {
			return nil, err
		}
		if len(body) > maxAssetBytes {
			return nil, resilience.Permanent(fmt.Errorf("asset %s exceeds %d bytes", path, maxAssetBytes))
		}
		return &assetResult{body: body, contentType: resp.Header.Get("Content-Type")}, nil
	})
	if err != nil {
		c.logger.Debug("assets: fetch failed", zap.String("url", url), zap.Error(err))
		return nil, "", classifyError(assetService, 0, err)
	}

	r := result.(*assetResult)
	return r.body, r.contentType, nil
}
