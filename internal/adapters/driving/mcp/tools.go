package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// relatedCompetitorLimit caps the competitor links returned with a product.
const relatedCompetitorLimit = 10

// RecommendInput is the input schema for the recommend tool.
type RecommendInput struct {
	URL          string `json:"url" jsonschema:"product page URL to find alternatives for"`
	Title        string `json:"title,omitempty" jsonschema:"product title"`
	Description  string `json:"description,omitempty" jsonschema:"product description"`
	CurrentScore *int   `json:"current_score,omitempty" jsonschema:"worth-to-buy score of the product (0-100)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of recommendations (default from settings)"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	Recommendations []RecommendationOutput `json:"recommendations"`
	Count           int                    `json:"count"`
}

// RecommendationOutput represents a single recommendation.
type RecommendationOutput struct {
	Title          string                `json:"title"`
	URL            string                `json:"url"`
	Price          *float64              `json:"price,omitempty"`
	Score          int                   `json:"score"`
	Similarity     float64               `json:"similarity"`
	Site           string                `json:"site"`
	Reason         string                `json:"reason"`
	Summary        string                `json:"summary,omitempty"`
	Reasons        []string              `json:"reasons,omitempty"`
	ScoreDelta     int                   `json:"score_difference,omitempty"`
	SimilarityText string                `json:"similarity_label,omitempty"`
	KeyDifferences []KeyDifferenceOutput `json:"key_differences,omitempty"`
}

// KeyDifferenceOutput is a pros/cons difference against the base product.
type KeyDifferenceOutput struct {
	Type        string   `json:"type"`
	Items       []string `json:"items"`
	Description string   `json:"description"`
}

// ProductInput is the input schema for the product tools.
type ProductInput struct {
	URL string `json:"url" jsonschema:"product page URL"`
}

// AspectOutput is a named aspect with its sentiment.
type AspectOutput struct {
	Aspect    string  `json:"aspect"`
	Sentiment float64 `json:"sentiment"`
}

// ProductOutput is the output schema for the get_product tool.
type ProductOutput struct {
	URL         string           `json:"url"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Price       *float64         `json:"price,omitempty"`
	Score       int              `json:"score"`
	Pros        []AspectOutput   `json:"pros"`
	Cons        []AspectOutput   `json:"cons"`
	Category    string           `json:"category"`
	Site        string           `json:"site"`
	CreatedAt   string           `json:"created_at"`
	Competitors []CompetitorLink `json:"competitors,omitempty"`
}

// CompetitorLink is a competitor recorded for a product.
type CompetitorLink struct {
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
}

// AnalyzeOutput is the output schema for the analyze_product tool.
type AnalyzeOutput struct {
	Product         ProductOutput          `json:"product"`
	ReviewCount     int                    `json:"review_count"`
	Verdict         string                 `json:"voice_verdict"`
	Recommendation  string                 `json:"recommendation"`
	Insights        string                 `json:"insights"`
	Confidence      float64                `json:"confidence"`
	DataQuality     float64                `json:"data_quality"`
	Recommendations []RecommendationOutput `json:"recommendations"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend",
		Description: "Recommend better-reviewed alternatives to a product",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get a stored product analysis with its recorded competitors",
	}, s.handleGetProduct)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_product",
		Description: "Fetch and analyse a product page, give a verdict, then recommend alternatives",
	}, s.handleAnalyzeProduct)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "related_products",
		Description: "List higher-scoring stored products from the same category",
	}, s.handleRelatedProducts)
}

// handleRecommend handles the recommend tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	recs := s.ports.Recommendation.GetProductRecommendations(ctx, domain.RecommendRequest{
		ProductURL:   input.URL,
		Title:        input.Title,
		Description:  input.Description,
		CurrentScore: input.CurrentScore,
		Limit:        input.Limit,
	})
	return nil, recommendOutput(recs), nil
}

// handleGetProduct handles the get_product tool invocation.
func (s *Server) handleGetProduct(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProductInput,
) (*mcp.CallToolResult, ProductOutput, error) {
	if s.ports.Product == nil {
		return nil, ProductOutput{}, ErrProductServiceUnavailable
	}

	product, err := s.ports.Product.Get(ctx, input.URL)
	if err != nil {
		return nil, ProductOutput{}, err
	}
	output := productOutput(product)

	links, err := s.ports.Product.Competitors(ctx, product.URL)
	if err != nil {
		return nil, ProductOutput{}, err
	}
	for i := range links {
		if i == relatedCompetitorLimit {
			break
		}
		output.Competitors = append(output.Competitors, CompetitorLink{
			URL:        links[i].CompetitorURL,
			Similarity: links[i].Similarity,
		})
	}
	return nil, output, nil
}

// handleAnalyzeProduct handles the analyze_product tool invocation.
func (s *Server) handleAnalyzeProduct(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProductInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	if s.ports.Product == nil {
		return nil, AnalyzeOutput{}, ErrProductServiceUnavailable
	}

	report, err := s.ports.Product.Analyze(ctx, input.URL)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	return nil, AnalyzeOutput{
		Product:         productOutput(&report.Product),
		ReviewCount:     report.ReviewCount,
		Verdict:         report.Verdict,
		Recommendation:  report.Recommendation,
		Insights:        report.Insights,
		Confidence:      report.Meta.Confidence,
		DataQuality:     report.Meta.DataQuality,
		Recommendations: recommendOutput(report.Recommendations).Recommendations,
	}, nil
}

// handleRelatedProducts handles the related_products tool invocation.
func (s *Server) handleRelatedProducts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProductInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	recs, err := s.ports.Recommendation.GetCollaborativeRecommendations(ctx, input.URL)
	if err != nil {
		return nil, RecommendOutput{}, err
	}
	return nil, recommendOutput(recs), nil
}

func recommendOutput(recs []domain.Recommendation) RecommendOutput {
	output := RecommendOutput{
		Recommendations: make([]RecommendationOutput, len(recs)),
		Count:           len(recs),
	}
	for i := range recs {
		out := RecommendationOutput{
			Title:      recs[i].Title,
			URL:        recs[i].URL,
			Price:      recs[i].Price,
			Score:      recs[i].Score,
			Similarity: recs[i].Similarity,
			Site:       recs[i].Site.String(),
			Reason:     recs[i].Reason,
		}
		if exp := recs[i].Explanation; exp != nil {
			out.Summary = exp.Recommendation
			out.Reasons = exp.Reasons
			out.ScoreDelta = exp.ScoreDifference
			out.SimilarityText = exp.Similarity
			for _, kd := range exp.KeyDifferences {
				out.KeyDifferences = append(out.KeyDifferences, KeyDifferenceOutput{
					Type:        string(kd.Type),
					Items:       kd.Items,
					Description: kd.Description,
				})
			}
		}
		output.Recommendations[i] = out
	}
	return output
}

func productOutput(p *domain.Product) ProductOutput {
	out := ProductOutput{
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Score:       p.Score,
		Pros:        aspectOutputs(p.Pros),
		Cons:        aspectOutputs(p.Cons),
		Category:    p.Category.String(),
		Site:        p.Site.String(),
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func aspectOutputs(items []domain.AspectSentiment) []AspectOutput {
	out := make([]AspectOutput, len(items))
	for i, item := range items {
		out[i] = AspectOutput{Aspect: item.Aspect, Sentiment: item.Sentiment}
	}
	return out
}
