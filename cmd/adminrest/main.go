package main

import (
	"os"
	"time"

	"github.com/brendan.keane/adminrest/internal/cli"
	"github.com/brendan.keane/adminrest/internal/config"
	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/internal/logger"
	"github.com/brendan.keane/adminrest/internal/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PresentError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var appLogger zerolog.Logger

	rootCmd := &cobra.Command{
		Use:   "adminrest [path]",
		Short: "Call a store's admin REST API",
		Long: `adminrest sends requests to a store's versioned admin REST API.

Paths like "products" or "orders/123" are expanded to
admin/api/<version>/<path>.json on the store's domain. The access token and
store can come from flags or the ADMINREST_* environment variables.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			debug, _ := cmd.Flags().GetBool("debug")
			jsonLogs, _ := cmd.Flags().GetBool("log-json")
			appLogger = logger.SetupFromFlags(verbose, debug, jsonLogs)
			log.Logger = appLogger

			cfg, err := config.LoadFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewRequestHandler(appLogger).Execute(cmd, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	config.RegisterFlags(flags)
	flags.Bool("debug", false, "Debug logging")
	flags.Bool("log-json", false, "Log as JSON instead of console text")
	// Errors are presented through the logger.
	rootCmd.SilenceErrors = true

	_ = rootCmd.RegisterFlagCompletionFunc("request", methodCompletion)
	_ = rootCmd.RegisterFlagCompletionFunc("allow-methods", methodCompletion)
	_ = rootCmd.RegisterFlagCompletionFunc("api-version", versionCompletion)
	_ = rootCmd.RegisterFlagCompletionFunc("scheme", schemeCompletion)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "versions",
			Short: "List the supported API versions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.NewVersionsHandler(appLogger).Execute(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve the admin API as MCP tools over stdio",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.NewMCPHandler(appLogger).Execute(cmd, args)
			},
		},
		generateCompletionCmd(),
	)

	return rootCmd
}

// Completion functions

func methodCompletion(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return config.ValidMethods, cobra.ShellCompDirectiveNoFileComp
}

func versionCompletion(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return validation.SupportedAPIVersions(time.Now()), cobra.ShellCompDirectiveNoFileComp
}

func schemeCompletion(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"https", "http", "lambda"}, cobra.ShellCompDirectiveNoFileComp
}

func generateCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(adminrest completion bash)

Zsh:

  $ source <(adminrest completion zsh)

Fish:

  $ adminrest completion fish | source

PowerShell:

  PS> adminrest completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
