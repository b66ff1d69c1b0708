// init.go implements the "stocklens init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/berth-dev/stocklens/internal/config"
	stlog "github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stocklens in the current directory",
	Long: `Create .stocklens/config.yaml with default settings and make sure
runtime files stay out of git. Settings can later be overridden with
STOCKLENS_* environment variables or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	apiURLFlag string
	forceFlag  bool
)

func init() {
	initCmd.Flags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (default http://localhost:3001)")
	initCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// Check for an existing config.
	if _, statErr := os.Stat(config.Path(dir)); statErr == nil && !forceFlag {
		fmt.Fprintf(out, "Warning: %s already exists.\n", filepath.Join(stlog.StateDir, "config.yaml"))
		fmt.Fprint(out, "Overwrite? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if apiURLFlag != "" {
		cfg.API.BaseURL = strings.TrimRight(apiURLFlag, "/")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Ensure .gitignore exists with sensible defaults.
	if err := ensureGitignore(dir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to set up .gitignore: %v\n", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Stocklens initialized")
	fmt.Fprintf(out, "  Backend:      %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  Max attempts: %d\n", cfg.Polling.MaxAttempts)
	fmt.Fprintf(out, "  Interval:     %dms\n", cfg.Polling.IntervalMs)
	if cfg.API.Token == nlquery.DefaultToken {
		fmt.Fprintln(out, "  Token:        development default (set STOCKLENS_API_TOKEN)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration written to %s\n", filepath.Join(stlog.StateDir, "config.yaml"))
	fmt.Fprintln(out, "Ready to run: stocklens query \"your question\"")

	return nil
}

// ensureGitignore creates or appends to .gitignore with the entries that
// should never be committed. It reads the existing file and only adds
// entries that aren't already present.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	// Entries that should always be gitignored.
	requiredEntries := []string{
		// Secrets
		".env",
		".env.*",
		// OS files
		".DS_Store",
		"Thumbs.db",
		// Stocklens runtime (config.yaml IS committed)
		".stocklens/log.jsonl",
		".stocklens/debug.log",
		".stocklens/report.md",
		".stocklens/reports/",
	}

	// Read existing content.
	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by stocklens init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
