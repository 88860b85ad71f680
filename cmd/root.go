package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thellimist/openapi-client-generator/internal/config"
)

var appVersion = "dev"

func SetVersion(v string) {
	appVersion = v
}

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagLogFile   string
	flagBackend   string
)

var rootCmd = &cobra.Command{
	Use:   "openapi-client-generator",
	Short: "MCP server that generates TypeScript API clients from OpenAPI documents",
	Long: `openapi-client-generator is an MCP server speaking JSON-RPC over stdio.
It exposes a single tool, generate_client, which turns an OpenAPI document
into a TypeScript client.

Run without arguments to serve on stdin/stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to a .yaml, .yml or .toml config file")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format: json or console")
	pf.StringVar(&flagLogFile, "log-file", "", "write logs to a rotated file instead of stderr")
	pf.StringVar(&flagBackend, "backend", "", "generator backend: native or npx")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func Execute() error {
	rootCmd.Version = appVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("openapi-client-generator v%s\n", appVersion))
	return rootCmd.Execute()
}

// loadConfig resolves defaults, the config file and the environment, then
// applies any persistent flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = flagLogFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	if flags.Changed("backend") {
		cfg.Generator.Backend = config.Backend(flagBackend)
	}
	if cfg.Server.Version == "" && appVersion != "dev" {
		cfg.Server.Version = appVersion
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
