package cli

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// supportedAPIVersions is the range of server API versions this CLI build
// understands.
var supportedAPIVersions = semver.MustParse("1.0.0")

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get server status and version information",
	Long: `Get server status and version information, and check that the server's
API version is compatible with this CLI build.

Examples:
  # Get server status
  hobbyhub status

  # Get server status in JSON format
  hobbyhub status -j`,
	RunE: getStatus,
}

// getStatus handles retrieving server status information
func getStatus(cmd *cobra.Command, args []string) (retErr error) {
	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	status, err := client.Status(cmd.Context())
	if err != nil {
		if jsonOutput {
			kv := map[string]string{
				"version_cli": getCLIVersion(),
				"error":       "Unable to connect to server: " + err.Error(),
			}
			printJSON(kv)
		} else {
			fmt.Printf("hobbyhub CLI %s\n", getCLIVersion())
			fmt.Println("Error: Unable to connect to server: " + err.Error())
		}
		return ErrAlreadyHandled
	}

	compatible, compatErr := apiVersionCompatible(status.APIVersion)

	if jsonOutput {
		output := map[string]any{
			"result":         1,
			"version_cli":    getCLIVersion(),
			"value":          status,
			"api_compatible": compatible,
		}
		printJSON(output)
		return nil
	}

	fmt.Printf("hobbyhub CLI %s\n", getCLIVersion())
	fmt.Printf("Server Version: %s\n", status.ServerVersion)
	fmt.Printf("API Version: %s\n", status.APIVersion)
	if status.ServerTime != "" {
		if serverTime, err := time.Parse(time.RFC3339, status.ServerTime); err == nil {
			fmt.Printf("Server Time: %s\n", serverTime.Local().Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Printf("Server Time: %s\n", status.ServerTime)
		}
	}
	if !compatible {
		errorLabel.Printf("Warning: server API version is not compatible with this CLI: %v\n", compatErr)
	}
	return nil
}

// apiVersionCompatible checks the server's API version against the range this
// CLI supports: same major version, at least the minimum minor.
func apiVersionCompatible(apiVersion string) (bool, error) {
	v, err := semver.NewVersion(apiVersion)
	if err != nil {
		return false, fmt.Errorf("unable to parse server API version %q: %w", apiVersion, err)
	}
	if v.Major() != supportedAPIVersions.Major() {
		return false, fmt.Errorf("server API major version %d, CLI supports %d", v.Major(), supportedAPIVersions.Major())
	}
	if v.LessThan(supportedAPIVersions) {
		return false, fmt.Errorf("server API version %s is older than the minimum supported %s", v, supportedAPIVersions)
	}
	return true, nil
}

// init initializes the status command and adds it to the root command
func init() {
	rootCmd.AddCommand(statusCmd)
}
