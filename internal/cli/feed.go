package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newFeedCmd creates and returns a new feed command
func newFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Browse the post feed",
		Long: `Browse the post feed, newest first. By default one page is shown;
--all walks the feed page by page until the server reports no further posts.

Examples:
  # Show the first page
  hobbyhub feed

  # Walk the entire feed
  hobbyhub feed --all

  # Use a custom page size
  hobbyhub feed --size 30`,
		RunE: runFeed,
	}

	cmd.Flags().Int("size", 0, "Page size (default from settings)")
	cmd.Flags().Bool("all", false, "Fetch every page, not just the first")
	return cmd
}

// runFeed handles the feed command execution
func runFeed(cmd *cobra.Command, args []string) (retErr error) {
	size, _ := cmd.Flags().GetInt("size")
	all, _ := cmd.Flags().GetBool("all")

	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	pager := client.FeedPager(size)
	var posts []api.Post
	for {
		items, err := pager.Next(cmd.Context())
		if err != nil {
			if errors.Is(err, page.ErrExhausted) {
				break
			}
			return fmt.Errorf("failed to fetch feed: %w", err)
		}
		posts = append(posts, items...)
		if !all || !pager.HasMore() {
			break
		}
	}

	if jsonOutput {
		printJSON(map[string]any{
			"result": 1,
			"posts":  posts,
		})
		return nil
	}

	if len(posts) == 0 {
		fmt.Println("No posts")
		return nil
	}
	for _, p := range posts {
		printPostLine(p)
	}
	if !all && pager.HasMore() {
		fmt.Println("... more posts available, use --all")
	}
	return nil
}

// printPostLine prints one feed entry in a compact one-line format.
func printPostLine(p api.Post) {
	likes := ""
	if p.LikeCount > 0 {
		likes = fmt.Sprintf("  ♥%d", p.LikeCount)
	}
	fmt.Printf("#%-6d [%s] %s by %s%s\n", p.PostID, p.Category, p.Title, p.AuthorNickname, likes)
}

func init() {
	rootCmd.AddCommand(newFeedCmd())
}
