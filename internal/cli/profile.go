package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMeCmd creates and returns the me command group
func newMeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		RunE:  runMe,
	}
	cmd.AddCommand(newSetNicknameCmd())
	return cmd
}

// runMe handles the me command execution
func runMe(cmd *cobra.Command, args []string) (retErr error) {
	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	profile, err := client.MyPage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if jsonOutput {
		printJSON(profile)
		return nil
	}
	fmt.Printf("%s <%s>\n", profile.Nickname, profile.Email)
	fmt.Printf("posts: %d  comments: %d  likes: %d\n", profile.PostCount, profile.CommentCount, profile.LikeCount)
	if profile.Rank > 0 {
		fmt.Printf("rank: #%d (score %d)\n", profile.Rank, profile.Score)
	}
	return nil
}

// newSetNicknameCmd creates the me set-nickname command
func newSetNicknameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-nickname <nickname>",
		Short: "Change your display nickname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			profile, err := client.UpdateNickname(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to change nickname: %w", err)
			}

			if jsonOutput {
				printJSON(profile)
			} else {
				okLabel.Printf("✓ Nickname changed to %s\n", profile.Nickname)
			}
			return nil
		},
	}
}

// newRankCmd creates and returns the rank command
func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show the user ranking board",
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			limit, _ := cmd.Flags().GetInt("limit")

			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			entries, err := client.Ranking(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to fetch ranking: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]any{
					"result":  1,
					"ranking": entries,
				})
				return nil
			}
			for _, e := range entries {
				fmt.Printf("#%-4d %-20s %d\n", e.Rank, e.Nickname, e.Score)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Number of entries to show (default from settings)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newMeCmd())
	rootCmd.AddCommand(newRankCmd())
}
