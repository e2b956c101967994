package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyse a product page",
	Long: `Fetches a product page, analyses its reviews, scores the product, stores
the result and recommends better alternatives.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	report, err := productService.Analyze(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			return fmt.Errorf("no reviews could be found for %s", args[0])
		}
		return fmt.Errorf("analysis failed: %w", err)
	}
	report.Product.Embedding = nil

	if analyzeJSON {
		return outputJSON(cmd, report)
	}

	outputProduct(cmd, &report.Product)
	cmd.Printf("Reviews:  %d\n", report.ReviewCount)
	if a := report.Product.Analysis; a != nil {
		cmd.Printf("Sentiment: %d positive, %d negative, %d neutral (confidence %.2f)\n",
			a.Overall.Positive, a.Overall.Negative, a.Overall.Neutral, a.Meta.Confidence)
	}
	if report.Recommendation != "" {
		cmd.Printf("Rating:   %s\n", report.Recommendation)
	}
	if report.Verdict != "" {
		cmd.Printf("Verdict:  %s\n", report.Verdict)
	}
	if report.Insights != "" {
		cmd.Printf("Insights: %s\n", report.Insights)
	}
	cmd.Println()
	outputRecommendations(cmd, report.Recommendations)
	return nil
}
