package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hobbyhub/hobbyhub/internal/client/clientconfig"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newOAuthCmd creates and returns the oauth command group
func newOAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Log in through Google or Kakao",
		Long: `Log in through a third-party identity provider. "oauth url" prints the
provider's authorization URL to open in a browser; after authorizing, pass
the code from the callback to "oauth complete".`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newOAuthURLCmd())
	cmd.AddCommand(newOAuthCompleteCmd())
	return cmd
}

// providerFromSettings builds the provider registration from settings.
func providerFromSettings(name string, settings clientconfig.Settings) (api.OAuthProvider, error) {
	switch name {
	case "google":
		if settings.OAuth.GoogleClientID == "" {
			return api.OAuthProvider{}, fmt.Errorf("google client id is not configured in settings")
		}
		return api.GoogleOAuth(settings.OAuth.GoogleClientID, settings.OAuth.GoogleRedirectURI), nil
	case "kakao":
		if settings.OAuth.KakaoClientID == "" {
			return api.OAuthProvider{}, fmt.Errorf("kakao client id is not configured in settings")
		}
		return api.KakaoOAuth(settings.OAuth.KakaoClientID, settings.OAuth.KakaoRedirectURI), nil
	default:
		return api.OAuthProvider{}, fmt.Errorf("unknown provider %q, expected google or kakao", name)
	}
}

// newOAuthURLCmd creates the oauth url command
func newOAuthURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <provider>",
		Short: "Print the provider's authorization URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			provider, err := providerFromSettings(args[0], settings)
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(map[string]string{
					"provider": provider.Name,
					"url":      provider.AuthorizeURL(),
				})
			} else {
				fmt.Println(provider.AuthorizeURL())
			}
			return nil
		},
	}
}

// newOAuthCompleteCmd creates the oauth complete command
func newOAuthCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <provider> <code>",
		Short: "Exchange an authorization code for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			res, err := client.CompleteOAuth(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("oauth login failed: %w", err)
			}

			store.SetAuth(res)

			if jsonOutput {
				printJSON(map[string]any{
					"status":  "success",
					"user_id": res.UserID,
				})
			} else {
				okLabel.Println("✓ Login successful")
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newOAuthCmd())
}
