package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdejongh/tabsnap/pkg/models"
)

// detectResult is the JSON form of one inspected file
type detectResult struct {
	Path        string   `json:"path"`
	Type        string   `json:"type"`
	ColumnCount int      `json:"column_count"`
	Headers     []string `json:"headers,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewDetectCommand creates the detect command
func NewDetectCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "detect <file>...",
		Short: "Show the header row inferred for files",
		Long: `Read each file with the configured readers and print the header row that
would be recorded in a reference file, along with the column count.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			registry, err := cfg.Registry()
			if err != nil {
				return fmt.Errorf("failed to configure readers: %w", err)
			}

			results := make([]detectResult, 0, len(args))
			failed := 0
			for _, path := range args {
				rec := models.NewFileRecord(path)
				res := detectResult{Path: path, Type: string(models.TypeForExtension(rec.Extension))}

				headers, width, err := registry.Inspect(ctx, path)
				if err != nil {
					res.Error = err.Error()
					failed++
				} else {
					res.ColumnCount = width
					res.Headers = headers
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if outputFormat == "json" {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(results); err != nil {
					return err
				}
			} else {
				writeDetectResults(out, results)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be read", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "output format: human, json")

	return cmd
}

func writeDetectResults(w io.Writer, results []detectResult) {
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", r.Path, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s: %d columns\n", r.Path, r.ColumnCount)
		fmt.Fprintf(w, "  %s\n", strings.Join(r.Headers, models.HeaderSeparator))
	}
}
