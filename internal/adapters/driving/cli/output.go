package cli

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func formatPrice(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *p)
}

func formatAspects(items []domain.AspectSentiment) string {
	if len(items) == 0 {
		return "none"
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s (%+.2f)", item.Aspect, item.Sentiment)
	}
	return strings.Join(parts, ", ")
}

func outputRecommendations(cmd *cobra.Command, recs []domain.Recommendation) {
	if len(recs) == 0 {
		cmd.Println("No better alternatives found.")
		return
	}

	cmd.Println("Recommendations:")
	cmd.Println()
	for i := range recs {
		rec := &recs[i]
		title := rec.Title
		if title == "" {
			title = rec.URL
		}
		// Format: [N] Title - score (similarity)
		cmd.Printf("  [%d] %s - score %d (similarity %.2f)\n", i+1, title, rec.Score, rec.Similarity)
		cmd.Printf("      %s\n", rec.URL)
		cmd.Printf("      Site: %s  Price: %s\n", rec.Site, formatPrice(rec.Price))
		if rec.Explanation != nil {
			cmd.Printf("      %s\n", rec.Explanation.Recommendation)
			for _, reason := range rec.Explanation.Reasons {
				cmd.Printf("        - %s\n", reason)
			}
		} else if rec.Reason != "" {
			cmd.Printf("      %s\n", rec.Reason)
		}
		cmd.Println()
	}
}

func outputProduct(cmd *cobra.Command, p *domain.Product) {
	cmd.Printf("Title:    %s\n", p.Title)
	cmd.Printf("URL:      %s\n", p.URL)
	cmd.Printf("Score:    %d\n", p.Score)
	cmd.Printf("Price:    %s\n", formatPrice(p.Price))
	cmd.Printf("Category: %s\n", p.Category)
	cmd.Printf("Site:     %s\n", p.Site)
	cmd.Printf("Pros:     %s\n", formatAspects(p.Pros))
	cmd.Printf("Cons:     %s\n", formatAspects(p.Cons))
	if !p.CreatedAt.IsZero() {
		cmd.Printf("Stored:   %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}
