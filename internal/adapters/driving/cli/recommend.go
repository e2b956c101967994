package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

var (
	recommendTitle       string
	recommendDescription string
	recommendScore       int
	recommendLimit       int
	recommendJSON        bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [url]",
	Short: "Recommend better alternatives to a product",
	Long: `Finds better-reviewed alternatives to a product.

Similar stored products are ranked first. When too few are found, competitor
products are searched for and analysed. Results are cached per product URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&recommendTitle, "title", "t", "", "product title")
	recommendCmd.Flags().StringVarP(&recommendDescription, "description", "d", "", "product description")
	recommendCmd.Flags().IntVarP(&recommendScore, "score", "s", -1, "current worth-to-buy score (0-100)")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "maximum number of recommendations (0 = settings default)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}

	req := domain.RecommendRequest{
		ProductURL:  args[0],
		Title:       recommendTitle,
		Description: recommendDescription,
		Limit:       recommendLimit,
	}
	if cmd.Flags().Changed("score") {
		score := recommendScore
		req.CurrentScore = &score
	}

	recs := recommendationService.GetProductRecommendations(cmd.Context(), req)

	if recommendJSON {
		return outputJSON(cmd, recs)
	}
	outputRecommendations(cmd, recs)
	return nil
}
