package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nyayagpt/nyaya/app"
	"github.com/nyayagpt/nyaya/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "nyaya",
	Short: "Multi-agent legal complaint assistant",
	Long: `nyaya turns a citizen's description of an incident into a legal
advisory, the applicable penal code sections, precedents and a formal
complaint, in English or Hindi.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search ./cmd/nyaya, ./config and .)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nyaya %s\n", version.Get())
	},
}

// newApp loads configuration and wires the service. One-shot commands log
// to stderr so stdout carries only the result.
func newApp(ctx context.Context, oneShot bool) (*app.App, error) {
	cfg, err := app.Load(configPath)
	if err != nil {
		return nil, err
	}
	if oneShot && cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	return app.New(ctx, cfg)
}

// readInput returns text, or the contents of file when text is empty.
// A file of "-" reads standard input.
func readInput(in io.Reader, text, file string) (string, error) {
	if text != "" {
		return text, nil
	}
	if file == "" {
		return "", fmt.Errorf("no input: pass the text as an argument or use --file")
	}
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeDocument writes doc to path, or to w when path is empty.
func writeDocument(w io.Writer, path, doc string) error {
	if path == "" {
		_, err := fmt.Fprintln(w, doc)
		return err
	}
	return os.WriteFile(path, []byte(doc+"\n"), 0o644)
}
