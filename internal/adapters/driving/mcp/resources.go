package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Verdict resources.
	uriScheme = "verdict://"

	productListLimit = 100
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing products.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "products",
		Name:        "products",
		Description: "Stored product analyses ordered by score",
		MIMEType:    "application/json",
	}, s.handleProductsResource)

	// Template for competitor links of a product.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "products/{productUrl}/competitors",
		Name:        "product-competitors",
		Description: "Competitors recorded for a product (the product URL is path-escaped)",
		MIMEType:    "application/json",
	}, s.handleCompetitorsResource)
}

// handleProductsResource returns the stored products.
func (s *Server) handleProductsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Product == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	products, err := s.ports.Product.List(ctx, domain.ListOptions{Limit: productListLimit})
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	type productInfo struct {
		URL      string `json:"url"`
		Title    string `json:"title"`
		Score    int    `json:"score"`
		Category string `json:"category"`
		Site     string `json:"site"`
	}

	infos := make([]productInfo, len(products))
	for i := range products {
		infos[i] = productInfo{
			URL:      products[i].URL,
			Title:    products[i].Title,
			Score:    products[i].Score,
			Category: products[i].Category.String(),
			Site:     products[i].Site.String(),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling products: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleCompetitorsResource returns competitor links for a product.
func (s *Server) handleCompetitorsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Product == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	productURL := extractProductURL(req.Params.URI)
	if productURL == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	links, err := s.ports.Product.Competitors(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("listing competitors: %w", err)
	}

	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling competitors: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractProductURL extracts the product URL from a URI like
// verdict://products/{productUrl}/competitors.
func extractProductURL(uri string) string {
	const prefix = uriScheme + "products/"
	const suffix = "/competitors"

	if len(uri) <= len(prefix)+len(suffix) ||
		!strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}

	escaped := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	productURL, err := url.PathUnescape(escaped)
	if err != nil {
		return ""
	}
	return productURL
}
