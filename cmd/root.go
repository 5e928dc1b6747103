package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/zendesk/config"
	"github.com/s0up4200/zendesk/filter"
	"github.com/s0up4200/zendesk/zendesk"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	client        *zendesk.Client
	filterManager *filter.Manager

	// Global flags
	subdomain string
	verbose   bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zendesk",
	Short: "A command line client for the Zendesk REST API",
	Long: `zendesk sends requests to the Zendesk REST API, pages through collections,
filters the returned records with expressions and exchanges OAuth
authorization codes for access tokens.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// SetVersion records the build information reported by the CLI
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", v, bt)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&subdomain, "subdomain", "", "override zendesk.subdomain")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger = setupLogger(cfg.Logging)

	// Command line overrides the configured subdomain

	if cmd.Flags().Changed("subdomain") {
		cfg.Zendesk.Subdomain = subdomain
	}

	// Create Zendesk client
	client, err = zendesk.NewClient(cfg.Zendesk.Subdomain, logger, clientOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to create Zendesk client: %w", err)
	}

	// Register preset filters
	filterManager = filter.NewManager()
	if len(cfg.Filter.Presets) > 0 {
		if err := filterManager.RegisterFilters(cfg.Filter.Presets); err != nil {
			return fmt.Errorf("invalid filter preset: %w", err)
		}
	}

	return nil
}

// clientOptions maps the configuration onto client options
func clientOptions(cfg *config.Config) []zendesk.Option {
	opts := []zendesk.Option{
		zendesk.WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		zendesk.WithUserAgent(cfg.HTTP.UserAgent),
		zendesk.WithConcurrency(cfg.HTTP.Concurrency),
	}

	if cfg.Zendesk.APIURL != "" {
		opts = append(opts, zendesk.WithAPIURL(cfg.Zendesk.APIURL))
	}
	if cfg.OAuth.TokenURL != "" {
		opts = append(opts, zendesk.WithOAuthTokenURL(cfg.OAuth.TokenURL))
	}
	if cfg.HTTP.InsecureSkipVerify {
		opts = append(opts, zendesk.WithInsecureSkipVerify())
	}

	switch {
	case cfg.Zendesk.OAuthToken != "":
		opts = append(opts, zendesk.WithOAuthToken(cfg.Zendesk.OAuthToken))
	case cfg.Zendesk.Token != "":
		opts = append(opts, zendesk.WithAPIToken(cfg.Zendesk.Email, cfg.Zendesk.Token))
	case cfg.Zendesk.Password != "":
		opts = append(opts, zendesk.WithPassword(cfg.Zendesk.Email, cfg.Zendesk.Password))
	}

	return opts
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to Zendesk",
	Long:  `Test the configured credentials by fetching the authenticated user.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to %s...\n", client.APIURL())

	resp, err := client.TestConnection(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "✓ Connection successful!")

	// Display user info
	if user, ok := resp["user"].(map[string]any); ok {
		fmt.Fprintf(out, "\nAuthenticated as:\n")
		fmt.Fprintf(out, "- Name: %v\n", user["name"])
		fmt.Fprintf(out, "- Email: %v\n", user["email"])
		fmt.Fprintf(out, "- Role: %v\n", user["role"])
	}

	dbg := client.LastDebug()
	if remaining := dbg.ResponseHeaders.Get("X-Rate-Limit-Remaining"); remaining != "" {
		fmt.Fprintf(out, "- Rate limit remaining: %s\n", remaining)
	}

	return nil
}
