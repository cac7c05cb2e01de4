package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newCommentCmd creates and returns the comment command group
func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "List and add comments on posts",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newCommentListCmd())
	cmd.AddCommand(newCommentAddCmd())
	return cmd
}

// newCommentListCmd creates the comment list command
func newCommentListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <post-id>",
		Short: "List comments on a post, newest first",
		Args:  cobra.ExactArgs(1),
		RunE:  runCommentList,
	}
	cmd.Flags().Int("size", 0, "Page size (default from settings)")
	cmd.Flags().Bool("all", false, "Fetch every page, not just the first")
	return cmd
}

// runCommentList handles the comment list command execution
func runCommentList(cmd *cobra.Command, args []string) (retErr error) {
	postID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid post id: %s", args[0])
	}
	size, _ := cmd.Flags().GetInt("size")
	all, _ := cmd.Flags().GetBool("all")

	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	pager := client.CommentsPager(postID, size)
	var comments []api.Comment
	for {
		items, err := pager.Next(cmd.Context())
		if err != nil {
			if errors.Is(err, page.ErrExhausted) {
				break
			}
			return fmt.Errorf("failed to fetch comments: %w", err)
		}
		comments = append(comments, items...)
		if !all || !pager.HasMore() {
			break
		}
	}

	if jsonOutput {
		printJSON(map[string]any{
			"result":   1,
			"comments": comments,
		})
		return nil
	}

	if len(comments) == 0 {
		fmt.Println("No comments")
		return nil
	}
	for _, c := range comments {
		fmt.Printf("#%-6d %s: %s\n", c.CommentID, c.AuthorNickname, c.Content)
	}
	return nil
}

// newCommentAddCmd creates the comment add command
func newCommentAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <post-id> <content>",
		Short: "Add a comment to a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id: %s", args[0])
			}

			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			comment, err := client.AddComment(cmd.Context(), api.AddCommentRequest{
				PostID:  postID,
				Content: args[1],
			})
			if err != nil {
				return fmt.Errorf("failed to add comment: %w", err)
			}

			if jsonOutput {
				printJSON(comment)
			} else {
				okLabel.Printf("✓ Comment #%d added to post #%d\n", comment.CommentID, postID)
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newCommentCmd())
}
