package meesho

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/productscout/backend/internal/domain"
)

const defaultTrendingURL = "https://www.meesho.com/trending"

// maxTrendingItems caps how many product cards one scrape yields.
const maxTrendingItems = 10

var nonPriceCharsRegex = regexp.MustCompile(`[^0-9.]`)

// Config holds the Meesho connector configuration.
type Config struct {
	TrendingURL string
	UserAgent   string
}

// Client is the Meesho marketplace connector. Meesho has no public search
// API, so the connector scrapes the trending page and returns its product
// cards regardless of the query. Scrapes are spaced at least five seconds
// apart to stay polite toward the site.
type Client struct {
	httpClient  *http.Client
	trendingURL string
	userAgent   string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Meesho connector.
func NewClient(config Config) *Client {
	trendingURL := config.TrendingURL
	if trendingURL == "" {
		trendingURL = defaultTrendingURL
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "ProductScoutBot/1.0 (+https://example.com/bot)"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		trendingURL: trendingURL,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

// SearchProducts implements domain.Connector. Any scrape failure is
// absorbed into an empty list.
func (c *Client) SearchProducts(ctx context.Context, query string) []domain.NormalizedProduct {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		log.Printf("[MEESHO] rate limiter wait aborted: %v", err)
		return nil
	}

	products, err := c.fetchTrending(ctx)
	if err != nil {
		log.Printf("[MEESHO] failed to scrape trending page, returning empty list: %v", err)
		return nil
	}

	log.Printf("[MEESHO] query=%q trending items=%d", query, len(products))
	return products
}

// fetchTrending downloads and parses the trending page.
func (c *Client) fetchTrending(ctx context.Context) ([]domain.NormalizedProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.trendingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrMarketplaceAPIFailure, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return parseTrendingPage(doc), nil
}

// parseTrendingPage extracts product records from the trending page DOM.
// Cards without a title or a parsable price are dropped.
func parseTrendingPage(doc *html.Node) []domain.NormalizedProduct {
	cards := findAll(doc, func(n *html.Node) bool {
		return attrValue(n, "data-testid") == "product"
	})

	var products []domain.NormalizedProduct
	for _, card := range cards {
		if len(products) >= maxTrendingItems {
			break
		}

		product, ok := parseProductCard(card)
		if !ok {
			continue
		}
		products = append(products, product)
	}

	return products
}

// parseProductCard extracts one product from a card node.
func parseProductCard(card *html.Node) (domain.NormalizedProduct, bool) {
	anchor := findFirst(card, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a"
	})
	if anchor == nil {
		return domain.NormalizedProduct{}, false
	}

	title := attrValue(anchor, "title")
	if title == "" {
		title = strings.TrimSpace(textContent(anchor))
	}
	if title == "" {
		return domain.NormalizedProduct{}, false
	}

	priceNode := findFirst(card, func(n *html.Node) bool {
		return attrValue(n, "data-testid") == "product-price"
	})
	if priceNode == nil {
		return domain.NormalizedProduct{}, false
	}

	priceText := nonPriceCharsRegex.ReplaceAllString(textContent(priceNode), "")
	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil || price <= 0 {
		return domain.NormalizedProduct{}, false
	}

	id := attrValue(anchor, "href")
	if id == "" {
		id = fmt.Sprintf("%s-%v", title, price)
	}

	product := domain.NormalizedProduct{
		ID:          id,
		Marketplace: domain.MarketplaceMeesho,
		Title:       title,
		Price:       price,
	}

	if img := findFirst(card, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "img"
	}); img != nil {
		product.ImageURL = attrValue(img, "src")
	}

	return product, true
}

// findAll returns every node in the tree matching the predicate,
// in document order.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			found = append(found, n)
			// Matched cards are not nested; no need to descend further.
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return found
}

// findFirst returns the first node in the tree matching the predicate.
func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textContent concatenates all text nodes beneath n.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}
