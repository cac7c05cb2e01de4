package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// postDraft is the YAML form of a post accepted by "post create -f".
type postDraft struct {
	Title    string `yaml:"title"`
	Content  string `yaml:"content"`
	Category string `yaml:"category"`
}

// draftEnv is the template context for post drafts: {{ .ENV.VAR }} resolves
// against the process environment, with a .env file in the working directory
// filling in anything the shell does not set.
type draftEnv struct {
	ENV map[string]string
}

var missingDraftVar = regexp.MustCompile(`map has no entry for key "([^"]+)"`)

// renderDraft expands environment placeholders in a draft before it is
// parsed as YAML. An unset variable is an error, so a half-rendered draft is
// never published.
func renderDraft(raw []byte) ([]byte, error) {
	if wd, err := os.Getwd(); err == nil {
		// godotenv never overrides variables already set in the shell
		_ = godotenv.Load(filepath.Join(wd, ".env"))
	}

	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	tmpl, err := template.New("post-draft").Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid draft template: %w", err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, draftEnv{ENV: env}); err != nil {
		if m := missingDraftVar.FindStringSubmatch(err.Error()); len(m) == 2 {
			return nil, fmt.Errorf("draft references %s, but it is not set in the environment or .env", m[1])
		}
		return nil, fmt.Errorf("failed to render draft: %w", err)
	}
	return out.Bytes(), nil
}

// newPostCmd creates and returns the post command group
func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Show, publish, and like posts",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newPostShowCmd())
	cmd.AddCommand(newPostCreateCmd())
	cmd.AddCommand(newPostLikeCmd())
	return cmd
}

// newPostShowCmd creates the post show command
func newPostShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post with its detail fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id: %s", args[0])
			}

			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			post, err := client.GetPost(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to fetch post: %w", err)
			}

			if jsonOutput {
				printJSON(post)
				return nil
			}
			fmt.Printf("#%d [%s] %s\n", post.PostID, post.Category, post.Title)
			fmt.Printf("by %s at %s\n", post.AuthorNickname, post.CreatedAt)
			fmt.Printf("likes: %d  comments: %d\n\n", post.LikeCount, post.CommentCount)
			fmt.Println(post.Content)
			return nil
		},
	}
}

// newPostCreateCmd creates the post create command
func newPostCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Long: `Publish a new post, either from flags or from a YAML draft file.
Draft files support {{ .ENV.VAR }} placeholders resolved from the environment
or a .env file in the working directory.

Examples:
  hobbyhub post create --title "New route" --content "..." --category climbing
  hobbyhub post create -f draft.yaml`,
		RunE: runPostCreate,
	}

	cmd.Flags().StringP("file", "f", "", "YAML draft file")
	cmd.Flags().String("title", "", "Post title")
	cmd.Flags().String("content", "", "Post content")
	cmd.Flags().String("category", "", "Post category")
	return cmd
}

// runPostCreate handles the post create command execution
func runPostCreate(cmd *cobra.Command, args []string) (retErr error) {
	file, _ := cmd.Flags().GetString("file")

	var draft postDraft
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("unable to read draft file: %w", err)
		}
		processed, err := renderDraft(raw)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(processed, &draft); err != nil {
			return fmt.Errorf("unable to parse draft file: %w", err)
		}
	} else {
		draft.Title, _ = cmd.Flags().GetString("title")
		draft.Content, _ = cmd.Flags().GetString("content")
		draft.Category, _ = cmd.Flags().GetString("category")
	}

	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	post, err := client.CreatePost(cmd.Context(), api.CreatePostRequest{
		Title:    draft.Title,
		Content:  draft.Content,
		Category: draft.Category,
	})
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}

	if jsonOutput {
		printJSON(post)
	} else {
		okLabel.Printf("✓ Published post #%d\n", post.PostID)
	}
	return nil
}

// newPostLikeCmd creates the post like command
func newPostLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Toggle your like on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id: %s", args[0])
			}

			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			res, err := client.ToggleLike(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to toggle like: %w", err)
			}

			if jsonOutput {
				printJSON(res)
				return nil
			}
			if res.Liked {
				okLabel.Printf("✓ Liked post #%d (%d likes)\n", id, res.LikeCount)
			} else {
				fmt.Printf("Removed like from post #%d (%d likes)\n", id, res.LikeCount)
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newPostCmd())
}
