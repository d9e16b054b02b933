package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zgpcy/azure-quota-watch/internal/config"
	"github.com/zgpcy/azure-quota-watch/internal/logger"
	"github.com/zgpcy/azure-quota-watch/internal/quota"
)

// APIVersion is the Microsoft.Quota API version used for both the
// usages and quotas endpoints.
const APIVersion = "2021-03-15-preview"

// HTTPClient is the transport seam. *http.Client satisfies it;
// tests substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the Microsoft.Quota usages and quotas endpoints for
// one subscription/provider/region triple at a time. It performs a
// single attempt per request; failures are returned to the caller
// rather than retried.
type Client struct {
	httpClient HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
}

// NewClient creates a new quota API client.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		logger:     log,
	}
}

// Usages retrieves the current usage records for the given
// subscription, provider and region.
func (c *Client) Usages(ctx context.Context, token, subscriptionID, provider, region string) ([]quota.UsageRecord, error) {
	url := c.usageURL(subscriptionID, provider, region)

	c.logger.Debug("Querying usage endpoint",
		"subscription_id", subscriptionID,
		"provider", provider,
		"region", region)

	body, err := c.get(ctx, url, token)
	if err != nil {
		return nil, err
	}

	return parseUsages(body)
}

// Quotas retrieves the quota limit records for the given subscription,
// provider and region.
func (c *Client) Quotas(ctx context.Context, token, subscriptionID, provider, region string) ([]quota.QuotaRecord, error) {
	url := c.quotaURL(subscriptionID, provider, region)

	c.logger.Debug("Querying quota endpoint",
		"subscription_id", subscriptionID,
		"provider", provider,
		"region", region)

	body, err := c.get(ctx, url, token)
	if err != nil {
		return nil, err
	}

	return parseQuotas(body)
}

func (c *Client) usageURL(subscriptionID, provider, region string) string {
	return fmt.Sprintf("%s/subscriptions/%s/providers/%s/locations/%s/providers/Microsoft.Quota/usages?api-version=%s",
		c.cfg.ManagementURL, subscriptionID, provider, region, APIVersion)
}

func (c *Client) quotaURL(subscriptionID, provider, region string) string {
	return fmt.Sprintf("%s/subscriptions/%s/providers/%s/locations/%s/providers/Microsoft.Quota/quotas?api-version=%s",
		c.cfg.ManagementURL, subscriptionID, provider, region, APIVersion)
}

// get performs a single authenticated GET against the management API.
// Any non-200 status is an error carrying the response body.
func (c *Client) get(ctx context.Context, url, token string) ([]byte, error) {
	apiTimeout := time.Duration(c.cfg.APITimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Wire shapes of the Microsoft.Quota responses. Pointers distinguish
// absent fields from zero values so parse failures name the missing
// field instead of defaulting it.

type resourceName struct {
	Value          string `json:"value"`
	LocalizedValue string `json:"localizedValue"`
}

type valueObject struct {
	Value *float64 `json:"value"`
}

type usageProperties struct {
	Name   *resourceName `json:"name"`
	Usages *valueObject  `json:"usages"`
}

type usageEntry struct {
	Properties *usageProperties `json:"properties"`
}

type usagesResponse struct {
	Value []usageEntry `json:"value"`
}

type quotaProperties struct {
	Name  *resourceName `json:"name"`
	Limit *valueObject  `json:"limit"`
}

type quotaEntry struct {
	Properties *quotaProperties `json:"properties"`
}

type quotasResponse struct {
	Value []quotaEntry `json:"value"`
}

// parseUsages converts a usages response body into usage records.
// A missing value array, element properties, localized name or usage
// value is a parse error; nothing is skipped silently.
func parseUsages(body []byte) ([]quota.UsageRecord, error) {
	var resp usagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse usage response: %w", err)
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("usage response missing value array")
	}

	records := make([]quota.UsageRecord, 0, len(resp.Value))
	for i, entry := range resp.Value {
		if entry.Properties == nil {
			return nil, fmt.Errorf("usage record %d: missing properties", i)
		}
		if entry.Properties.Name == nil || entry.Properties.Name.LocalizedValue == "" {
			return nil, fmt.Errorf("usage record %d: missing properties.name.localizedValue", i)
		}
		if entry.Properties.Usages == nil || entry.Properties.Usages.Value == nil {
			return nil, fmt.Errorf("usage record %d: missing properties.usages.value", i)
		}

		records = append(records, quota.UsageRecord{
			Name:         entry.Properties.Name.LocalizedValue,
			CurrentValue: *entry.Properties.Usages.Value,
		})
	}

	return records, nil
}

// parseQuotas converts a quotas response body into quota records.
func parseQuotas(body []byte) ([]quota.QuotaRecord, error) {
	var resp quotasResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse quota response: %w", err)
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("quota response missing value array")
	}

	records := make([]quota.QuotaRecord, 0, len(resp.Value))
	for i, entry := range resp.Value {
		if entry.Properties == nil {
			return nil, fmt.Errorf("quota record %d: missing properties", i)
		}
		if entry.Properties.Name == nil || entry.Properties.Name.LocalizedValue == "" {
			return nil, fmt.Errorf("quota record %d: missing properties.name.localizedValue", i)
		}
		if entry.Properties.Limit == nil || entry.Properties.Limit.Value == nil {
			return nil, fmt.Errorf("quota record %d: missing properties.limit.value", i)
		}

		records = append(records, quota.QuotaRecord{
			Name:  entry.Properties.Name.LocalizedValue,
			Limit: *entry.Properties.Limit.Value,
		})
	}

	return records, nil
}
