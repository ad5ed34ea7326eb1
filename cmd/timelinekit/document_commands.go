package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"timelinekit/internal/docfile"
	"timelinekit/internal/engine"
	"timelinekit/internal/sanitize"
	"timelinekit/internal/validate"
)

const maxPrecisionFlag = 17

type issueView struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func issueViews(issues []validate.Issue) []issueView {
	views := make([]issueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, issueView{
			Kind:    string(issue.Kind),
			Path:    issue.Path.String(),
			Message: issue.Message,
		})
	}
	return views
}

type actionView struct {
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Detail string `json:"detail"`
}

type sanitizeView struct {
	Changed bool         `json:"changed"`
	Actions []actionView `json:"actions"`
	Errors  []issueView  `json:"errors"`
}

func newSanitizeView(report sanitize.Report) sanitizeView {
	view := sanitizeView{
		Changed: report.Changed(),
		Actions: make([]actionView, 0, len(report.Actions)),
		Errors:  make([]issueView, 0, len(report.Errors)),
	}
	for _, action := range report.Actions {
		view.Actions = append(view.Actions, actionView{
			Kind:   string(action.Kind),
			Path:   action.Path.String(),
			Detail: action.Detail,
		})
	}
	for _, unrecoverable := range report.Errors {
		view.Errors = append(view.Errors, issueView{
			Kind:    string(unrecoverable.Kind),
			Path:    unrecoverable.Path.String(),
			Message: unrecoverable.Message,
		})
	}
	return view
}

// outputTarget picks where a rewritten document goes: the input itself with
// --write, the -o path, or stdout.
func outputTarget(input, output string, write bool) (string, error) {
	if write {
		if input == docfile.Stdio {
			return "", errors.New("--write needs a file argument, not stdin")
		}
		return input, nil
	}
	if output != "" {
		return output, nil
	}
	return docfile.Stdio, nil
}

// infoWriter returns where human-readable summaries go so they never mix
// with a document written to stdout.
func infoWriter(cmd *cobra.Command, target string) io.Writer {
	if target == docfile.Stdio {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a document for structural and timing problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, tl, runCtx, err := ctx.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			issues := eng.Check(runCtx, tl)

			if jsonOutput {
				if err := writeJSON(cmd, issueViews(issues)); err != nil {
					return err
				}
			} else {
				printIssues(cmd.OutOrStdout(), documentLabel(args[0]), issues)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%s: %s", documentLabel(args[0]), countLabel(len(issues), "issue", "issues"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit issues as JSON")
	return cmd
}

func printIssues(out io.Writer, label string, issues []validate.Issue) {
	colorize := shouldColorize(out)
	if len(issues) == 0 {
		fmt.Fprintln(out, renderStatusLine(label, statusOK, "no issues", colorize))
		return
	}
	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{kindTitle(string(issue.Kind)), issue.Path.String(), issue.Message})
	}
	fmt.Fprintln(out, renderTable(tableLayout{
		headers:  []string{"Kind", "Path", "Message"},
		colorize: colorize,
	}, rows))
	fmt.Fprintln(out, renderStatusLine(label, statusWarn, countLabel(len(issues), "issue", "issues"), colorize))
}

func newSanitizeCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var write bool
	var jsonOutput bool
	var dropZeroLength bool
	var mergeGaps bool

	cmd := &cobra.Command{
		Use:   "sanitize FILE",
		Short: "Repair common malformations and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := outputTarget(args[0], outputPath, write)
			if err != nil {
				return err
			}
			eng, tl, runCtx, err := ctx.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			var opts []engine.RepairOption
			if cmd.Flags().Changed("drop-zero-length") {
				opts = append(opts, engine.WithDropZeroLength(dropZeroLength))
			}
			if cmd.Flags().Changed("merge-gaps") {
				opts = append(opts, engine.WithMergeAdjacentGaps(mergeGaps))
			}
			report := eng.Repair(runCtx, tl, opts...)

			emitDocument := !(jsonOutput && target == docfile.Stdio) && (!write || report.Changed())
			if emitDocument {
				data, err := eng.Encode(runCtx, tl)
				if err != nil {
					return fmt.Errorf("serialize: %w", err)
				}
				if err := docfile.Write(runCtx, target, data, cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, newSanitizeView(report)); err != nil {
					return err
				}
			} else {
				printReport(infoWriter(cmd, target), documentLabel(args[0]), report)
			}
			if err := report.Err(); err != nil {
				return fmt.Errorf("%s: %w", documentLabel(args[0]), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the repaired document to this path")
	cmd.Flags().BoolVar(&write, "write", false, "Replace FILE with the repaired document")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the repair report as JSON")
	cmd.Flags().BoolVar(&dropZeroLength, "drop-zero-length", false, "Remove clips and gaps that last zero frames (default from config)")
	cmd.Flags().BoolVar(&mergeGaps, "merge-gaps", false, "Fold neighbouring gaps into one (default from config)")
	cmd.MarkFlagsMutuallyExclusive("output", "write")
	return cmd
}

func printReport(out io.Writer, label string, report sanitize.Report) {
	colorize := shouldColorize(out)
	if len(report.Actions) > 0 {
		rows := make([][]string, 0, len(report.Actions))
		for _, action := range report.Actions {
			rows = append(rows, []string{kindTitle(string(action.Kind)), action.Path.String(), action.Detail})
		}
		fmt.Fprintln(out, renderTable(tableLayout{
			title:    "Repairs",
			headers:  []string{"Action", "Path", "Detail"},
			colorize: colorize,
		}, rows))
	}
	for _, unrecoverable := range report.Errors {
		fmt.Fprintln(out, renderStatusLine(label, statusError, unrecoverable.Error(), colorize))
	}
	switch {
	case len(report.Errors) > 0:
	case report.Changed():
		fmt.Fprintln(out, renderStatusLine(label, statusWarn, countLabel(len(report.Actions), "repair applied", "repairs applied"), colorize))
	default:
		fmt.Fprintln(out, renderStatusLine(label, statusOK, "nothing to repair", colorize))
	}
}

func newFmtCommand(ctx *commandContext) *cobra.Command {
	var precision int
	var pretty bool
	var outputPath string
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Re-serialize a document deterministically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := outputTarget(args[0], outputPath, write)
			if err != nil {
				return err
			}
			var opts []engine.EncodeOption
			if cmd.Flags().Changed("precision") {
				if precision < -1 || precision > maxPrecisionFlag {
					return fmt.Errorf("--precision must be between -1 and %d, got %d", maxPrecisionFlag, precision)
				}
				opts = append(opts, engine.WithPrecision(precision))
			}
			if cmd.Flags().Changed("pretty") {
				opts = append(opts, engine.WithPretty(pretty))
			}

			eng, tl, runCtx, err := ctx.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := eng.Encode(runCtx, tl, opts...)
			if err != nil {
				return fmt.Errorf("serialize: %w", err)
			}
			return docfile.Write(runCtx, target, data, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&precision, "precision", -1, "Decimal digits for time values (-1 keeps full precision; default from config)")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "Indent output (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the document to this path")
	cmd.Flags().BoolVar(&write, "write", false, "Replace FILE with the formatted document")
	cmd.MarkFlagsMutuallyExclusive("output", "write")
	return cmd
}

type trackView struct {
	Index           int     `json:"index"`
	Name            string  `json:"name"`
	Kind            string  `json:"kind"`
	Items           int     `json:"items"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type inspectView struct {
	Name            string      `json:"name"`
	Duration        string      `json:"duration"`
	DurationSeconds float64     `json:"duration_seconds"`
	Clips           int         `json:"clips"`
	Gaps            int         `json:"gaps"`
	Transitions     int         `json:"transitions"`
	Markers         int         `json:"markers"`
	Effects         int         `json:"effects"`
	Issues          int         `json:"issues"`
	Tracks          []trackView `json:"tracks"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize the tracks and contents of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, tl, runCtx, err := ctx.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			summary := engine.Summarize(tl)
			view := inspectView{
				Name:            summary.Name,
				Duration:        summary.Duration.String(),
				DurationSeconds: summary.Duration.Seconds(),
				Clips:           summary.Clips,
				Gaps:            summary.Gaps,
				Transitions:     summary.Transitions,
				Markers:         summary.Markers,
				Effects:         summary.Effects,
				Issues:          len(eng.Check(runCtx, tl)),
				Tracks:          []trackView{},
			}
			if tl.Tracks != nil {
				for i, tr := range tl.Tracks.Children {
					if tr == nil {
						continue
					}
					d := tr.Duration()
					view.Tracks = append(view.Tracks, trackView{
						Index:           i,
						Name:            tr.Name,
						Kind:            string(tr.Kind),
						Items:           len(tr.Children),
						Duration:        d.String(),
						DurationSeconds: d.Seconds(),
					})
				}
			}
			if jsonOutput {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderTable(tableLayout{
				title:    view.Name,
				headers:  []string{"Field", "Value"},
				colorize: colorize,
			}, [][]string{
				{"Duration", formatDuration(summary.Duration)},
				{"Tracks", countPrinter.Sprintf("%d", summary.Tracks)},
				{"Clips", countPrinter.Sprintf("%d", summary.Clips)},
				{"Gaps", countPrinter.Sprintf("%d", summary.Gaps)},
				{"Transitions", countPrinter.Sprintf("%d", summary.Transitions)},
				{"Markers", countPrinter.Sprintf("%d", summary.Markers)},
				{"Effects", countPrinter.Sprintf("%d", summary.Effects)},
				{"Issues", countPrinter.Sprintf("%d", view.Issues)},
			}))
			rows := make([][]string, 0, len(view.Tracks))
			for _, tr := range view.Tracks {
				rows = append(rows, []string{
					strconv.Itoa(tr.Index),
					tr.Name,
					tr.Kind,
					strconv.Itoa(tr.Items),
					fmt.Sprintf("%s (%.3fs)", tr.Duration, tr.DurationSeconds),
				})
			}
			fmt.Fprintln(out, renderTable(tableLayout{
				headers:  []string{"#", "Track", "Kind", "Items", "Duration"},
				aligns:   []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
				colorize: colorize,
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the summary as JSON")
	return cmd
}
