package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newSearchCmd creates and returns a new search command
func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search posts by keyword",
		Long: `Search posts by keyword. Results are paginated; --all walks every
result page until the server reports no further matches.

Examples:
  hobbyhub search climbing
  hobbyhub search climbing --all --limit 30`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().Int("limit", 0, "Result page size (default from settings)")
	cmd.Flags().Bool("all", false, "Fetch every result page, not just the first")
	return cmd
}

// runSearch handles the search command execution
func runSearch(cmd *cobra.Command, args []string) (retErr error) {
	keyword := args[0]
	limit, _ := cmd.Flags().GetInt("limit")
	all, _ := cmd.Flags().GetBool("all")

	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	pager := client.SearchPager(keyword, limit)
	var hits []api.SearchPost
	for {
		items, err := pager.Next(cmd.Context())
		if err != nil {
			if errors.Is(err, page.ErrExhausted) {
				break
			}
			return fmt.Errorf("search failed: %w", err)
		}
		hits = append(hits, items...)
		if !all || !pager.HasMore() {
			break
		}
	}

	if jsonOutput {
		printJSON(map[string]any{
			"result": 1,
			"posts":  hits,
		})
		return nil
	}

	if len(hits) == 0 {
		fmt.Printf("No posts matching %q\n", keyword)
		return nil
	}
	for _, h := range hits {
		fmt.Printf("#%-6d %s by %s\n", h.PostID, h.Title, h.AuthorNickname)
	}
	if !all && pager.HasMore() {
		fmt.Println("... more results available, use --all")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newSearchCmd())
}
