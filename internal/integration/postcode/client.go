// Package postcode resolves German postal codes to place names via the
// Zippopotam API. Lookups are enrichment only; callers swallow failures
// and leave the city blank.
package postcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/httpclient"
	"grundbuch-workers/internal/common/observability"
)

const DefaultBaseURL = "https://api.zippopotam.us"

type Client struct {
	baseURL     string
	countryCode string
	httpClient  *httpclient.Client
}

type lookupResponse struct {
	PostCode string `json:"post code"`
	Places   []struct {
		PlaceName string `json:"place name"`
		State     string `json:"state"`
	} `json:"places"`
}

func NewClient(baseURL, countryCode string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if countryCode == "" {
		countryCode = "DE"
	}
	return &Client{
		baseURL:     baseURL,
		countryCode: countryCode,
		httpClient:  httpclient.NewClient(timeout),
	}
}

// LookupCity returns the place name for a postal code. Any failure maps to
// POSTCODE_LOOKUP_FAILED; there are no retries.
func (c *Client) LookupCity(ctx context.Context, plz string) (string, error) {
	ctx, span := observability.StartSpan(ctx, "postcode.LookupCity")
	defer span.End()

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.countryCode, plz)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewPostcodeLookupFailedError(plz, err)
	}

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		observability.RecordError(ctx, err)
		return "", errors.NewPostcodeLookupFailedError(plz, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewPostcodeLookupFailedError(plz, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewPostcodeLookupFailedError(plz, err)
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return "", errors.NewPostcodeLookupFailedError(plz, err)
	}

	if len(lookup.Places) == 0 {
		return "", errors.NewPostcodeLookupFailedError(plz, fmt.Errorf("no places in response"))
	}

	return lookup.Places[0].PlaceName, nil
}
