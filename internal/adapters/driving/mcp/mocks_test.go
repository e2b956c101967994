package mcp

import (
	"context"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// mockRecommendationService is a mock implementation of driving.RecommendationService.
type mockRecommendationService struct {
	recommendations []domain.Recommendation
	collaborative   []domain.Recommendation
	product         *domain.Product
	err             error
	lastRequest     domain.RecommendRequest
}

func (m *mockRecommendationService) GetProductRecommendations(
	_ context.Context,
	req domain.RecommendRequest,
) []domain.Recommendation {
	m.lastRequest = req
	return m.recommendations
}

func (m *mockRecommendationService) GetCollaborativeRecommendations(
	_ context.Context,
	_ string,
) ([]domain.Recommendation, error) {
	return m.collaborative, m.err
}

func (m *mockRecommendationService) StoreProduct(
	_ context.Context,
	_ domain.StoreProductInput,
) (*domain.Product, error) {
	return m.product, m.err
}

// mockProductService is a mock implementation of driving.ProductService.
type mockProductService struct {
	report      *domain.ProductReport
	product     *domain.Product
	products    []domain.Product
	links       []domain.CompetitorLink
	err         error
	linksErr    error
	linksForURL string
}

func (m *mockProductService) Analyze(_ context.Context, _ string) (*domain.ProductReport, error) {
	return m.report, m.err
}

func (m *mockProductService) Get(_ context.Context, _ string) (*domain.Product, error) {
	return m.product, m.err
}

func (m *mockProductService) List(_ context.Context, _ domain.ListOptions) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *mockProductService) Competitors(_ context.Context, url string) ([]domain.CompetitorLink, error) {
	m.linksForURL = url
	return m.links, m.linksErr
}

func (m *mockProductService) Remove(_ context.Context, _ string) error {
	return m.err
}
