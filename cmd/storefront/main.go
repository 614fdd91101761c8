package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/brizzai/storefront-gateway/internal/app"
	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/integrations"
	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/metrics"
	"github.com/brizzai/storefront-gateway/internal/requester"
)

func main() {
	Execute()
}

var siteID string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront gateway to user and page content services",
	Long: `Storefront gateway exposes the storefront routes backed by the user lookup
and PWA page content services, plus the newsletter subscription store.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Call a remote integration once and print the result",
}

var callUserCmd = &cobra.Command{
	Use:   "user <userID>...",
	Short: "Look up one or more users",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCallUser,
}

var callPageCmd = &cobra.Command{
	Use:   "page <pageID>...",
	Short: "Fetch the content of one or more pages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCallPage,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE:  runConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	callPageCmd.Flags().StringVar(&siteID, "site", "", "Site ID, defaults to storefront.site_id")

	callCmd.AddCommand(callUserCmd, callPageCmd)
	rootCmd.AddCommand(serveCmd, callCmd, configCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app.New(cfg).Run()
	return nil
}

// standalone builds the integration dependencies without starting the server
func standalone(cfg *config.Config) (integrations.Params, error) {
	set, err := integrations.LoadFixtures(cfg)
	if err != nil {
		return integrations.Params{}, err
	}
	return integrations.Params{
		Config:    cfg,
		Transport: requester.NewHTTPRequester(nil),
		Fixtures:  set,
		Metrics:   metrics.NewMetrics(),
	}, nil
}

func runCallUser(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := standalone(cfg)
	if err != nil {
		return err
	}
	client := integrations.NewUserLookup(p)

	results := make([]any, len(args))
	calls := make([]*requester.CallError, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, id := range args {
		g.Go(func() error {
			res := client.GetUser(ctx, id)
			results[i], calls[i] = res.Payload, res.Error
			return nil
		})
	}
	_ = g.Wait()
	return printResults(args, results, calls)
}

func runCallPage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := standalone(cfg)
	if err != nil {
		return err
	}
	client := integrations.NewPageContent(p)
	site := siteID
	if site == "" {
		site = cfg.Storefront.SiteID
	}

	results := make([]any, len(args))
	calls := make([]*requester.CallError, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, id := range args {
		g.Go(func() error {
			res := client.GetPageContent(ctx, site, id)
			if res.OK {
				results[i] = *res.Payload
			}
			calls[i] = res.Error
			return nil
		})
	}
	_ = g.Wait()
	return printResults(args, results, calls)
}

func printResults(keys []string, results []any, calls []*requester.CallError) error {
	failed := 0
	for i, key := range keys {
		if calls[i] != nil {
			failed++
			pterm.Error.Printfln("%s: %s (kind %s, status %d)", key, calls[i].Message, calls[i].Kind, calls[i].HTTPStatus())
			continue
		}
		out, err := json.MarshalIndent(results[i], "", "  ")
		if err != nil {
			return err
		}
		pterm.Success.Printfln("%s:\n%s", key, out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d calls failed", failed, len(keys))
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	pterm.DefaultSection.Println("Effective configuration")
	pterm.Println(string(out))
	if svc := cfg.Services.UserLookup; svc.BaseURL == "" && !svc.Simulated() {
		pterm.Warning.Printfln("%s is not set, set %s", svc.Setting, config.EnvKey(svc.Setting))
	}
	if svc := cfg.Services.PageContent; svc.BaseURL == "" && !svc.Simulated() {
		pterm.Warning.Printfln("%s is not set, set %s", svc.Setting, config.EnvKey(svc.Setting))
	}
	return nil
}
