package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the hobbyhub server",
		Long: `Login to the hobbyhub server with your email and password. On success
the token pair is stored in your configuration file and used by every
subsequent command until it expires or you log out.

Example:
  hobbyhub login --email ann@example.com --password <password>`,
		RunE: runLogin,
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) (retErr error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if email == "" || password == "" {
		return fmt.Errorf("both --email and --password are required")
	}

	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	res, err := client.Login(cmd.Context(), api.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	store.SetAuth(res)

	if jsonOutput {
		kv := map[string]interface{}{
			"status":  "success",
			"message": "Login successful",
			"user_id": res.UserID,
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Login successful")
	}

	return nil
}

// newSignupCmd creates and returns a new signup command
func newSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a hobbyhub account",
		Long: `Create a new hobbyhub account. On success the account is logged in and
the token pair is stored in your configuration file.`,
		RunE: runSignup,
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (at least 8 characters)")
	cmd.Flags().String("nickname", "", "Display nickname (2-20 characters)")
	return cmd
}

// runSignup handles the signup command execution
func runSignup(cmd *cobra.Command, args []string) (retErr error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	nickname, _ := cmd.Flags().GetString("nickname")

	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	res, err := client.Signup(cmd.Context(), api.SignupRequest{
		Email:    email,
		Password: password,
		Nickname: nickname,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	store.SetAuth(res)

	if jsonOutput {
		kv := map[string]interface{}{
			"status":  "success",
			"message": "Account created",
			"user_id": res.UserID,
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Account created and logged in")
	}

	return nil
}

// newLogoutCmd creates and returns a new logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newSessionStore()
			if err != nil {
				return err
			}
			store.Logout()
			if err := saveSession(store); err != nil {
				return err
			}

			if jsonOutput {
				printJSON(map[string]string{"status": "success"})
			} else {
				okLabel.Println("✓ Logged out")
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newLogoutCmd())
}
