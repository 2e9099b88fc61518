package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sofmeright/waxlint/src/lint"
	"github.com/sofmeright/waxlint/src/markup"
)

var extractTokens bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the annotated markup that would be sent for linting",
	Long: `Print the markup waxlint extracts from a file, with the wax-ln line
markers it injects. Nothing is sent to the lint service.

Use --tokens to list the tokens and the lines they were placed on.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractTokens, "tokens", false, "list tokens instead of the markup")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	name := args[0]
	exts := cfg.Lint.Extensions
	if exts == nil {
		exts = markup.DefaultExtensions
	}
	if !markup.SupportedBy(name, exts) {
		return fmt.Errorf("%s: %w", name, lint.ErrUnsupportedFileType)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	annotated, tokens := markup.Annotated(tokenizer(cfg.Lint.LineMode), string(data))
	w := cmd.OutOrStdout()

	if extractTokens {
		for _, t := range tokens {
			kind := "text"
			if t.IsTag {
				kind = "tag"
			}
			fmt.Fprintf(w, "%5d:%-4d %-4s %s\n", t.Line, t.Column, kind, strconv.Quote(t.Content))
		}
		return nil
	}

	ex := markup.Extract(annotated)
	if verbose {
		fmt.Fprintf(os.Stderr, "extract: %d tokens, markup from %s\n", len(tokens), ex.Source)
	}
	fmt.Fprintln(w, ex.Markup)
	return nil
}
