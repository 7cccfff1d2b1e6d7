package amazon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(host string) Config {
	return Config{
		AccessKey:  "AKIATEST",
		SecretKey:  "secret",
		PartnerTag: "scout-21",
		Host:       host,
		Region:     "eu-west-1",
	}
}

const sampleResponse = `{
	"SearchResult": {
		"Items": [
			{
				"ASIN": "B0EXAMPLE1",
				"DetailPageURL": "https://www.amazon.in/dp/B0EXAMPLE1",
				"ItemInfo": {
					"Title": {"DisplayValue": "Wireless Earbuds Pro"},
					"CustomerReviews": {"StarRating": 4.3, "TotalReviewCount": 812}
				},
				"Images": {"Primary": {"Large": {"URL": "https://m.media-amazon.com/img1.jpg"}}},
				"Offers": {"Listings": [{"Price": {"Amount": 899}, "MerchantInfo": {"Name": "SoundCo Retail"}}]},
				"BrowseNodeInfo": {"BrowseNodes": [{"DisplayName": "Electronics", "SalesRank": 42}, {"DisplayName": "Headphones"}]}
			},
			{
				"ASIN": "B0NOPRICE",
				"ItemInfo": {"Title": {"DisplayValue": "Unpriced Item"}},
				"Offers": {"Listings": []}
			}
		]
	}
}`

func TestSearchProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/paapi5/searchitems", r.URL.Path)
		assert.Equal(t, "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems", r.Header.Get("X-Amz-Target"))
		assert.Equal(t, "amz-1.0", r.Header.Get("Content-Encoding"))
		// SigV4 signature must be attached
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256"))
		assert.NotEmpty(t, r.Header.Get("X-Amz-Date"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	products := client.SearchProducts(context.Background(), "earbuds")

	// The unpriced item is dropped during normalization
	require.Len(t, products, 1)
	product := products[0]
	assert.Equal(t, "B0EXAMPLE1", product.ID)
	assert.Equal(t, "Wireless Earbuds Pro", product.Title)
	assert.Equal(t, 899.0, product.Price)
	require.NotNil(t, product.Rating)
	assert.Equal(t, 4.3, *product.Rating)
	require.NotNil(t, product.Reviews)
	assert.Equal(t, 812, *product.Reviews)
	assert.Equal(t, []string{"Electronics", "Headphones"}, product.CategoryPath)
	require.NotNil(t, product.BestSellerRank)
	assert.Equal(t, 42, *product.BestSellerRank)
	require.NotNil(t, product.SellersCount)
	assert.Equal(t, 1, *product.SellersCount)
}

func TestSearchProducts_MissingCredentialsSkipsRequest(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.SecretKey = ""
	client := NewClient(config)

	products := client.SearchProducts(context.Background(), "earbuds")

	assert.Empty(t, products)
	assert.Equal(t, int32(0), requests.Load(), "no request should be made without credentials")
}

func TestSearchProducts_ServerErrorYieldsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"Errors":[{"Code":"TooManyRequests"}]}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	products := client.SearchProducts(context.Background(), "earbuds")

	assert.Empty(t, products)
}

func TestSearchProducts_MalformedResponseYieldsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	products := client.SearchProducts(context.Background(), "earbuds")

	assert.Empty(t, products)
}

func TestEndpointURL(t *testing.T) {
	bare := NewClient(testConfig("webservices.amazon.in"))
	assert.Equal(t, "https://webservices.amazon.in/paapi5/searchitems", bare.endpointURL())

	full := NewClient(testConfig("http://127.0.0.1:9999"))
	assert.Equal(t, "http://127.0.0.1:9999/paapi5/searchitems", full.endpointURL())
}
