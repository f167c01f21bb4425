package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nyayagpt/nyaya/legal"
)

var (
	inputFile    string
	language     string
	lawyerEmail  string
	outputFile   string
	asJSON       bool
	analysisFile string
)

var runCmd = &cobra.Command{
	Use:   "run [incident description]",
	Short: "Run the end-to-end pipeline and print the complaint",
	Long: `Run intake, section and precedent retrieval, notification drafting and
document drafting in one pipeline. With --lawyer-email the complaint is
emailed as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), firstArg(args), inputFile)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		return a.RunTask(cmd.Context(), func(ctx context.Context) error {
			res, err := a.Service.Run(ctx, legal.RunRequest{
				UserInput:          text,
				LanguagePreference: language,
				LawyerEmail:        lawyerEmail,
			})
			if err != nil {
				return err
			}
			if res.EmailResult != nil && !res.EmailResult.OK {
				fmt.Fprintf(cmd.ErrOrStderr(), "email to %s failed: %s\n", res.EmailResult.To, res.EmailResult.Error)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return writeDocument(cmd.OutOrStdout(), outputFile, res.Document)
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [incident description]",
	Short: "Run the advisory stage and print the analysis as JSON",
	Long: `Run intake and advisory. The JSON printed is the input of
"nyaya draft --analysis".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), firstArg(args), inputFile)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		return a.RunTask(cmd.Context(), func(ctx context.Context) error {
			res, err := a.Service.Analyze(ctx, legal.AnalyzeRequest{UserInput: text, LanguagePreference: language})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		})
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft the complaint from a saved analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadDraftRequest(cmd.InOrStdin(), analysisFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("language") {
			req.LanguagePreference = language
		}
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		return a.RunTask(cmd.Context(), func(ctx context.Context) error {
			res, err := a.Service.Draft(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return writeDocument(cmd.OutOrStdout(), outputFile, res.Document)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, analyzeCmd} {
		c.Flags().StringVarP(&inputFile, "file", "f", "", "read the description from a file (- for stdin)")
	}
	for _, c := range []*cobra.Command{runCmd, analyzeCmd, draftCmd} {
		c.Flags().StringVarP(&language, "language", "l", string(legal.English), "output language: english, hindi or both")
	}
	for _, c := range []*cobra.Command{runCmd, draftCmd} {
		c.Flags().StringVarP(&outputFile, "output", "o", "", "write the document to a file")
		c.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	}
	runCmd.Flags().StringVar(&lawyerEmail, "lawyer-email", "", "email the complaint to this lawyer")
	draftCmd.Flags().StringVarP(&analysisFile, "analysis", "a", "", "JSON printed by \"nyaya analyze\" (- for stdin)")
	_ = draftCmd.MarkFlagRequired("analysis")
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}

// loadDraftRequest reads an analysis saved from "nyaya analyze".
func loadDraftRequest(in io.Reader, path string) (legal.DraftRequest, error) {
	data, err := readInput(in, "", path)
	if err != nil {
		return legal.DraftRequest{}, err
	}
	var res legal.AnalyzeResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return legal.DraftRequest{}, fmt.Errorf("parsing analysis: %w", err)
	}
	return res.DraftRequest(), nil
}
