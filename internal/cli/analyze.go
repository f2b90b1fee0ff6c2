package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/buergerwerk/klartext/internal/pipeline"
)

var (
	analyzeLocale    string
	analyzeMaxClaims int
)

// analyzeCmd runs a one-shot analysis from a file or stdin
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a submission from a file or stdin",
	Long: `Run the full analysis pipeline once and print the result as JSON.

Reads the submission text from the given file, or from stdin when no
file is named.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text []byte
		var err error
		if len(args) == 1 {
			text, err = os.ReadFile(args[0])
		} else {
			text, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		application, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer application.close()

		result, err := application.analyzer.Analyze(cmd.Context(), pipeline.AnalyzeRequest{
			Text:      string(text),
			Locale:    analyzeLocale,
			MaxClaims: analyzeMaxClaims,
			Trace:     ulid.Make().String(),
		}, nil)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

		if verbose && result.Degraded {
			fmt.Fprintf(os.Stderr, "Note: degraded result (%s)\n", result.Reason)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLocale, "locale", "de", "submission locale (de or en)")
	analyzeCmd.Flags().IntVar(&analyzeMaxClaims, "max-claims", 0, "claim cap, 1-20 (default 8)")
	rootCmd.AddCommand(analyzeCmd)
}
