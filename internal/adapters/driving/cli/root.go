// Package cli provides the cobra command tree for the verdict binary.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/verdict-cli/internal/core/ports/driving"
	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Recommendation driving.RecommendationService
	Product        driving.ProductService
	Settings       driving.SettingsService
}

// Options are the global flag values passed to the initialiser.
type Options struct {
	Verbose   bool
	DataDir   string
	ConfigDir string
}

// Initialiser builds the services once global flags are parsed. The
// returned cleanup function is called after the command finishes.
type Initialiser func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	recommendationService driving.RecommendationService
	productService        driving.ProductService
	settingsService       driving.SettingsService

	initialiser Initialiser
	cleanup     func()

	opts Options
)

var rootCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Product review analysis and recommendations",
	Long: `Verdict analyses product reviews from marketplace pages, scores how worth
buying a product is, and recommends better-reviewed alternatives.

Analysed products are stored locally so later recommendations can draw on
similar products without fetching them again.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default ~/.verdict/data)")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "config directory (default ~/.verdict)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the services directly, bypassing the initialiser.
func SetServices(s Services) {
	recommendationService = s.Recommendation
	productService = s.Product
	settingsService = s.Settings
}

// SetInitialiser registers the function that builds the services.
func SetInitialiser(fn Initialiser) {
	initialiser = fn
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if initialiser == nil || !needsServices(cmd) {
		return nil
	}

	services, done, err := initialiser(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	if services == nil {
		return errors.New("initialising: no services")
	}
	SetServices(*services)
	cleanup = done
	return nil
}

// needsServices reports whether cmd uses the services. The version and
// help commands run without touching storage.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}
