package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

var resetYes bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure recommendation constants, the NLP tagger, the result
cache and the web scraper.

Settings are stored in config.toml under the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its config key, for example:

  verdict settings set recommendation.similarity_threshold 0.2
  verdict settings set cache.backend redis

Run "verdict settings keys" to list the recognised keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsNLPCmd = &cobra.Command{
	Use:   "nlp",
	Short: "Configure the NLP tagger",
	Long: `Choose the provider used to tag noun phrases and entities when extracting
product features. Without a provider a token-based fallback is used.`,
	Args: cobra.NoArgs,
	RunE: runSettingsNLP,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	settingsResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsNLPCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	r := settings.Recommendation
	cmd.Println("[Recommendation]")
	cmd.Printf("  Cache expiry: %d days\n", r.CacheExpiryDays)
	cmd.Printf("  Max competitors per site: %d\n", r.MaxCompetitorsPerSite)
	cmd.Printf("  Similarity threshold: %.2f\n", r.SimilarityThreshold)
	cmd.Printf("  Min score improvement: %d\n", r.MinScoreImprovement)
	cmd.Printf("  Embedding dimensions: %d\n", r.EmbeddingDimensions)
	cmd.Printf("  Recency: %d days\n", r.RecencyDays)
	cmd.Printf("  Competitor workers: %d\n", r.CompetitorWorkers)
	cmd.Printf("  Default limit: %d\n", r.DefaultLimit)
	if r.Filter != "" {
		cmd.Printf("  Filter: %s\n", r.Filter)
	} else {
		cmd.Println("  Filter: (none)")
	}
	cmd.Println()

	cmd.Println("[NLP]")
	cmd.Printf("  Provider: %s\n", settings.NLP.Provider.Description())
	if settings.NLP.IsConfigured() {
		cmd.Printf("  Model: %s\n", settings.NLP.Model)
		if settings.NLP.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.NLP.BaseURL)
		}
	}
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend)
	if settings.Cache.Backend == domain.CacheBackendRedis {
		cmd.Printf("  Redis: %s (db %d)\n", settings.Cache.RedisAddr, settings.Cache.RedisDB)
	}
	cmd.Println()

	cmd.Println("[Scraper]")
	cmd.Printf("  Rate: %.2f requests/s\n", settings.Scraper.RatePerSecond)
	cmd.Printf("  Timeout: %ds\n", settings.Scraper.TimeoutSeconds)
	cmd.Printf("  User agent: %s\n", settings.Scraper.UserAgent)
	if settings.Scraper.SelectorsFile != "" {
		cmd.Printf("  Selectors file: %s\n", settings.Scraper.SelectorsFile)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrUnknownSetting) {
			cmd.Println("Recognised keys:")
			for _, k := range settingsService.Keys() {
				cmd.Printf("  %s\n", k)
			}
		}
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsNLP(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	providers := []domain.NLPProvider{domain.NLPProviderNone, domain.NLPProviderOllama}

	cmd.Println("Select NLP provider:")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("Choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	settings.NLP = domain.NLPSettings{Provider: provider}
	if provider != domain.NLPProviderNone {
		defaultModel := domain.DefaultNLPModels()[provider]
		cmd.Printf("Model [%s]: ", defaultModel)
		settings.NLP.Model = readLine(reader)
		if settings.NLP.Model == "" {
			settings.NLP.Model = defaultModel
		}

		cmd.Print("Base URL [http://localhost:11434]: ")
		settings.NLP.BaseURL = readLine(reader)
		if settings.NLP.BaseURL == "" {
			settings.NLP.BaseURL = "http://localhost:11434"
		}
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("NLP provider set to %s\n", provider.Description())
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if !resetYes && isInteractive() {
		cmd.Print("Restore all settings to defaults? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("Settings restored to defaults.")
	return nil
}

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func readLine(reader *bufio.Reader) string {
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

// parseChoice returns the 1-based choice in input, or defaultVal when it
// is not a number between 1 and maxVal.
func parseChoice(input string, maxVal, defaultVal int) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}
