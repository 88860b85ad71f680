package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thellimist/openapi-client-generator/internal/auth"
)

var (
	flagCredFile         string
	flagCredType         string
	flagCredToken        string
	flagCredHeader       string
	flagCredUsername     string
	flagCredPassword     string
	flagCredClientID     string
	flagCredClientSecret string
	flagCredTokenURL     string
	flagCredScopes       []string
	flagCredKeyFile      string
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage per-host credentials used to download OpenAPI documents",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <host>",
	Short: "Store credentials for a host",
	Long: `Store credentials for a host. The host may be given bare or as a URL.

Examples:
  openapi-client-generator credentials set api.example.com --type bearer --token $TOKEN
  openapi-client-generator credentials set https://internal:8443 --type basic --username me --password secret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred := auth.Credential{
			Type:         flagCredType,
			Token:        flagCredToken,
			HeaderName:   flagCredHeader,
			Username:     flagCredUsername,
			Password:     flagCredPassword,
			ClientID:     flagCredClientID,
			ClientSecret: flagCredClientSecret,
			TokenURL:     flagCredTokenURL,
			Scopes:       flagCredScopes,
			KeyFile:      flagCredKeyFile,
		}
		if _, err := auth.NewProvider(cred); err != nil {
			return err
		}

		path := credentialsPath()
		creds, err := auth.LoadCredentials(path)
		if err != nil {
			return err
		}
		creds.Set(args[0], cred)
		if err := auth.SaveCredentials(path, creds); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s credentials for %s\n", cred.Type, auth.NormalizeHost(args[0]))
		return nil
	},
}

var credentialsRemoveCmd = &cobra.Command{
	Use:   "remove <host>",
	Short: "Remove stored credentials for a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := credentialsPath()
		creds, err := auth.LoadCredentials(path)
		if err != nil {
			return err
		}
		if !creds.Remove(args[0]) {
			return fmt.Errorf("no credentials stored for %s", auth.NormalizeHost(args[0]))
		}
		if err := auth.SaveCredentials(path, creds); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed credentials for %s\n", auth.NormalizeHost(args[0]))
		return nil
	},
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosts with stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		creds, err := auth.LoadCredentials(credentialsPath())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		hosts := creds.HostNames()
		if len(hosts) == 0 {
			fmt.Fprintln(out, "No stored credentials")
			return nil
		}
		for _, h := range hosts {
			fmt.Fprintf(out, "%s\t%s\n", h, strings.TrimSpace(creds.Hosts[h].Type))
		}
		return nil
	},
}

func init() {
	credentialsCmd.PersistentFlags().StringVar(&flagCredFile, "file", "", "credentials file (default ~/.openapi-client-generator/credentials.json)")

	f := credentialsSetCmd.Flags()
	f.StringVar(&flagCredType, "type", "bearer", "auth type: bearer, api_key, basic, client_credentials, google_sa")
	f.StringVar(&flagCredToken, "token", "", "bearer token or API key")
	f.StringVar(&flagCredHeader, "header", "", "header name for api_key auth (default X-API-Key)")
	f.StringVar(&flagCredUsername, "username", "", "username for basic auth")
	f.StringVar(&flagCredPassword, "password", "", "password for basic auth")
	f.StringVar(&flagCredClientID, "client-id", "", "OAuth2 client ID")
	f.StringVar(&flagCredClientSecret, "client-secret", "", "OAuth2 client secret")
	f.StringVar(&flagCredTokenURL, "token-url", "", "OAuth2 token endpoint")
	f.StringSliceVar(&flagCredScopes, "scopes", nil, "OAuth2 scopes (comma-separated)")
	f.StringVar(&flagCredKeyFile, "key-file", "", "Google service account key file")

	credentialsCmd.AddCommand(credentialsSetCmd, credentialsRemoveCmd, credentialsListCmd)
}

func credentialsPath() string {
	if flagCredFile != "" {
		return flagCredFile
	}
	return auth.DefaultCredentialsPath()
}
