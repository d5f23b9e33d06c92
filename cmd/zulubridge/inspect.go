package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"zulubridge/internal/bridge"
	"zulubridge/pkg/types"
)

var (
	inspectURL     string
	inspectTimeout time.Duration
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show version and status of a running bridge",
	Long: `Fetch /version and /status from a running bridge and print them.

The target defaults to ZULUBRIDGE_INSPECT_URL, or http://localhost when unset.`,
	RunE: runInspect,
}

func init() {
	def := os.Getenv("ZULUBRIDGE_INSPECT_URL")
	if def == "" {
		def = "http://localhost"
	}
	inspectCmd.Flags().StringVar(&inspectURL, "target", def, "Base URL of the bridge")
	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", 5*time.Second, "Request timeout")
	rootCmd.AddCommand(inspectCmd)
}

type inspectResult struct {
	Version types.VersionDocument
	Status  types.DeviceStatus
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), inspectTimeout)
	defer cancel()
	res, err := inspect(ctx, http.DefaultClient, inspectURL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderInspect(res))
	return nil
}

func inspect(ctx context.Context, c *http.Client, base string) (inspectResult, error) {
	var res inspectResult
	base = strings.TrimRight(base, "/")
	if err := getJSON(ctx, c, base+"/version", &res.Version); err != nil {
		return res, err
	}
	if err := getJSON(ctx, c, base+"/status", &res.Status); err != nil {
		return res, err
	}
	return res, nil
}

func getJSON(ctx context.Context, c *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}

var (
	inspectTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	inspectLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true).
			Width(12)
	inspectValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
	inspectWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
	inspectBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func renderInspect(res inspectResult) string {
	row := func(label, value string, style lipgloss.Style) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, inspectLabelStyle.Render(label), style.Render(value))
	}
	v := res.Version
	compat := inspectValueStyle
	if !bridge.Compatible(v.ClientAPIVersion, v.ServerAPIVersion) {
		compat = inspectWarnStyle
	}
	image := "none"
	if res.Status.Image != nil && res.Status.Image.Filename != "" {
		image = res.Status.Image.Filename
	}
	role := "secondary"
	if res.Status.IsPrimary {
		role = "primary"
	}
	lines := []string{
		row("client API", v.ClientAPIVersion, inspectValueStyle),
		row("server API", v.ServerAPIVersion, compat),
	}
	if v.Message != "" {
		lines = append(lines, inspectWarnStyle.Render(v.Message))
	}
	lines = append(lines,
		row("drive", role, inspectValueStyle),
		row("image", image, inspectValueStyle),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		inspectTitleStyle.Render("zulubridge"),
		inspectBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
}
