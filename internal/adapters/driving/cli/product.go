package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

var (
	productListCategory string
	productListLimit    int
	productListOffset   int
	productJSON         bool

	storeTitle       string
	storeDescription string
	storePrice       string
	storeScore       int
	storePros        []string
	storeCons        []string
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage stored products",
	Long:  `List, inspect, store and remove analysed products.`,
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored products",
	Args:  cobra.NoArgs,
	RunE:  runProductList,
}

var productGetCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Show a stored product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductGet,
}

var productStoreCmd = &cobra.Command{
	Use:   "store [url]",
	Short: "Store a product without fetching it",
	Long: `Stores a product from the given facts. Features, category, site and
embedding are derived from the title and description.`,
	Args: cobra.ExactArgs(1),
	RunE: runProductStore,
}

var productCompetitorsCmd = &cobra.Command{
	Use:   "competitors [url]",
	Short: "List competitors recorded for a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductCompetitors,
}

var productRelatedCmd = &cobra.Command{
	Use:   "related [url]",
	Short: "List higher-scoring products from the same category",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductRelated,
}

var productRemoveCmd = &cobra.Command{
	Use:   "remove [url]",
	Short: "Remove a stored product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductRemove,
}

func init() {
	productListCmd.Flags().StringVarP(&productListCategory, "category", "c", "", "filter by category")
	productListCmd.Flags().IntVarP(&productListLimit, "limit", "n", 20, "maximum number of products")
	productListCmd.Flags().IntVar(&productListOffset, "offset", 0, "number of products to skip")

	productStoreCmd.Flags().StringVarP(&storeTitle, "title", "t", "", "product title")
	productStoreCmd.Flags().StringVarP(&storeDescription, "description", "d", "", "product description")
	productStoreCmd.Flags().StringVar(&storePrice, "price", "", "product price")
	productStoreCmd.Flags().IntVarP(&storeScore, "score", "s", 0, "worth-to-buy score (0-100)")
	productStoreCmd.Flags().StringSliceVar(&storePros, "pro", nil, "aspect the product is praised for (repeatable)")
	productStoreCmd.Flags().StringSliceVar(&storeCons, "con", nil, "aspect the product is criticised for (repeatable)")

	for _, c := range []*cobra.Command{
		productListCmd, productGetCmd, productStoreCmd, productCompetitorsCmd, productRelatedCmd,
	} {
		c.Flags().BoolVar(&productJSON, "json", false, "output as JSON")
		productCmd.AddCommand(c)
	}
	productCmd.AddCommand(productRemoveCmd)
	rootCmd.AddCommand(productCmd)
}

func runProductList(cmd *cobra.Command, _ []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	products, err := productService.List(cmd.Context(), domain.ListOptions{
		Category: domain.Category(productListCategory),
		Limit:    productListLimit,
		Offset:   productListOffset,
	})
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if productJSON {
		for i := range products {
			products[i].Embedding = nil
		}
		return outputJSON(cmd, products)
	}

	if len(products) == 0 {
		cmd.Println("No products stored.")
		return nil
	}
	for i := range products {
		cmd.Printf("  %3d  %-12s %s\n", products[i].Score, products[i].Category, products[i].Title)
		cmd.Printf("       %s\n", products[i].URL)
	}
	return nil
}

func runProductGet(cmd *cobra.Command, args []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	product, err := productService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product not found: %s", args[0])
		}
		return fmt.Errorf("failed to get product: %w", err)
	}
	product.Embedding = nil

	if productJSON {
		return outputJSON(cmd, product)
	}
	outputProduct(cmd, product)
	return nil
}

func runProductStore(cmd *cobra.Command, args []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}

	input := domain.StoreProductInput{
		URL:         args[0],
		Title:       storeTitle,
		Description: storeDescription,
		Score:       storeScore,
		Pros:        aspectsFromNames(storePros),
		Cons:        aspectsFromNames(storeCons),
	}
	if storePrice != "" {
		price, err := strconv.ParseFloat(storePrice, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", storePrice, err)
		}
		input.Price = &price
	}

	product, err := recommendationService.StoreProduct(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("failed to store product: %w", err)
	}
	product.Embedding = nil

	if productJSON {
		return outputJSON(cmd, product)
	}
	cmd.Printf("Stored %s (category %s, site %s)\n", product.URL, product.Category, product.Site)
	return nil
}

func runProductCompetitors(cmd *cobra.Command, args []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	links, err := productService.Competitors(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list competitors: %w", err)
	}

	if productJSON {
		return outputJSON(cmd, links)
	}
	if len(links) == 0 {
		cmd.Println("No competitors recorded.")
		return nil
	}
	for i := range links {
		cmd.Printf("  %.2f  %s\n", links[i].Similarity, links[i].CompetitorURL)
	}
	return nil
}

func runProductRelated(cmd *cobra.Command, args []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}

	recs, err := recommendationService.GetCollaborativeRecommendations(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product not stored: %s", args[0])
		}
		return fmt.Errorf("failed to find related products: %w", err)
	}

	if productJSON {
		return outputJSON(cmd, recs)
	}
	outputRecommendations(cmd, recs)
	return nil
}

func runProductRemove(cmd *cobra.Command, args []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	if err := productService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove product: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

// aspectsFromNames builds aspect entries with a neutral sentiment.
func aspectsFromNames(names []string) []domain.AspectSentiment {
	if len(names) == 0 {
		return nil
	}
	items := make([]domain.AspectSentiment, len(names))
	for i, name := range names {
		items[i] = domain.AspectSentiment{Aspect: name}
	}
	return items
}
