package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/zendesk/zendesk"
)

var (
	authCode    string
	redirectURI string
)

// oauthCmd exchanges an authorization code for an access token
var oauthCmd = &cobra.Command{
	Use:   "oauth",
	Short: "Exchange an OAuth authorization code for an access token",
	Long: `Exchange the authorization code returned to your redirect URI for an access
token. The client id and secret are read from oauth.client_id and
oauth.client_secret.`,
	RunE: runOAuth,
}

func init() {
	rootCmd.AddCommand(oauthCmd)

	oauthCmd.Flags().StringVar(&authCode, "code", "", "authorization code")
	oauthCmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect URI registered with the OAuth client (default oauth.redirect_uri)")
	_ = oauthCmd.MarkFlagRequired("code")
}

func runOAuth(cmd *cobra.Command, args []string) error {
	creds := zendesk.OAuthCredentials{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURI:  cfg.OAuth.RedirectURI,
	}
	if redirectURI != "" {
		creds.RedirectURI = redirectURI
	}

	token, err := client.ExchangeOAuthCode(cmd.Context(), authCode, creds)
	if err != nil {
		logger.Debug().Interface("debug", client.LastDebug()).Msg("OAuth exchange failed")
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	logger.Info().Str("token_type", token.TokenType).Str("scope", token.Scope).Msg("Obtained access token")
	return printJSON(cmd.OutOrStdout(), token)
}
