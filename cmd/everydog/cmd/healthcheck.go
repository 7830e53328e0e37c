package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/everydog-league/api/internal/handler"
	"github.com/spf13/cobra"
)

var (
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Call the /health endpoint and exit 0 when the server reports "ok".

Intended for container HEALTHCHECK directives.`,
		RunE: runHealthcheck,
	}

	healthcheckTimeout time.Duration
	healthcheckURL     string
)

func init() {
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 5*time.Second, "request timeout")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "health check URL (default: http://localhost:{PORT}/health)")
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := healthcheckURL
	if url == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8001"
		}
		url = fmt.Sprintf("http://localhost:%s/health", port)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), healthcheckTimeout)
	defer cancel()
	return checkHealth(ctx, url, cmd.OutOrStdout())
}

func checkHealth(ctx context.Context, url string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	var health handler.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("invalid health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || health.Status != "ok" {
		return fmt.Errorf("server unhealthy: status %d, %q, checks %v", resp.StatusCode, health.Status, health.Checks)
	}

	fmt.Fprintf(out, "healthy: %s\n", health.Status)
	return nil
}
