package amazon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/productscout/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	searchItemsPath   = "/paapi5/searchitems"
	searchItemsTarget = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"
	serviceName       = "ProductAdvertisingAPI"
)

// Config holds the Amazon Product Advertising API credentials and endpoint.
// Credentials may be empty; the connector then skips requests instead of
// failing the search.
type Config struct {
	AccessKey  string
	SecretKey  string
	PartnerTag string
	Host       string
	Region     string
}

// Client is the Amazon marketplace connector. It searches the Product
// Advertising API v5 (SigV4-signed requests) and normalizes the items into
// the common product schema.
type Client struct {
	httpClient  *http.Client
	signer      *v4.Signer
	config      Config
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Amazon PA-API connector.
func NewClient(config Config) *Client {
	// PA-API starts every account at roughly 1 request per second;
	// stay at that floor so a burst of searches never trips throttling.
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		signer:      v4.NewSigner(),
		config:      config,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SearchProducts implements domain.Connector. All failures are absorbed
// here: missing credentials, signing errors, network errors, non-200
// responses and unparsable payloads each yield an empty list so a broken
// Amazon integration never aborts the overall search.
func (c *Client) SearchProducts(ctx context.Context, query string) []domain.NormalizedProduct {
	if c.config.AccessKey == "" || c.config.SecretKey == "" || c.config.PartnerTag == "" {
		log.Printf("[AMZ] PA-API credentials missing, skipping request")
		return nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		log.Printf("[AMZ] rate limiter wait aborted: %v", err)
		return nil
	}

	response, err := c.searchItems(ctx, query)
	if err != nil {
		log.Printf("[AMZ] search failed for %q: %v", query, err)
		return nil
	}

	products := normalizeItems(response.SearchResult.Items)
	log.Printf("[AMZ] query=%q items=%d normalized=%d", query, len(response.SearchResult.Items), len(products))
	return products
}

// searchItems executes one signed SearchItems request.
func (c *Client) searchItems(ctx context.Context, query string) (*searchItemsResponse, error) {
	payload := searchItemsRequest{
		Keywords:    query,
		SearchIndex: "All",
		ItemCount:   10,
		PartnerTag:  c.config.PartnerTag,
		PartnerType: "Associates",
		Resources: []string{
			"BrowseNodeInfo.BrowseNodes",
			"BrowseNodeInfo.BrowseNodes.SalesRank",
			"Images.Primary.Large",
			"ItemInfo.Title",
			"Offers.Listings.Price",
			"ItemInfo.CustomerReviews",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqURL := c.endpointURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", searchItemsTarget)

	// PA-API v5 authenticates with standard AWS SigV4 over the request body.
	payloadHash := sha256.Sum256(body)
	credentials := aws.Credentials{
		AccessKeyID:     c.config.AccessKey,
		SecretAccessKey: c.config.SecretKey,
	}
	if err := c.signer.SignHTTP(ctx, credentials, req, hex.EncodeToString(payloadHash[:]), serviceName, c.config.Region, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	if c.debug {
		log.Printf("[AMZ] POST %s query=%q", reqURL, query)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrMarketplaceAPIFailure, resp.StatusCode, string(respBody))
	}

	var response searchItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &response, nil
}

// endpointURL builds the SearchItems endpoint. Host is normally a bare
// hostname; a full URL (as used by tests) is passed through unchanged.
func (c *Client) endpointURL() string {
	if strings.Contains(c.config.Host, "://") {
		return c.config.Host + searchItemsPath
	}
	return "https://" + c.config.Host + searchItemsPath
}
