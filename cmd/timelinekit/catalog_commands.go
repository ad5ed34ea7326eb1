package main

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"timelinekit/internal/catalog"
	"timelinekit/internal/engine"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Store and compare canonical documents",
	}

	catalogCmd.AddCommand(newCatalogAddCommand(ctx))
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogVerifyCommand(ctx))
	catalogCmd.AddCommand(newCatalogRemoveCommand(ctx))

	return catalogCmd
}

type catalogEntryView struct {
	Name            string    `json:"name"`
	Digest          string    `json:"digest"`
	Precision       int       `json:"precision"`
	Issues          int       `json:"issues"`
	Tracks          int       `json:"tracks"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newCatalogEntryView(e catalog.Entry) catalogEntryView {
	return catalogEntryView{
		Name:            e.Name,
		Digest:          e.Digest,
		Precision:       e.Precision,
		Issues:          e.IssueCount,
		Tracks:          e.TrackCount,
		DurationSeconds: e.DurationSeconds,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func precisionLabel(p int) string {
	if p < 0 {
		return "full"
	}
	return strconv.Itoa(p)
}

func newCatalogAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME FILE",
		Short: "Store the canonical form of a document under NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			eng, tl, runCtx, err := ctx.loadDocument(cmd, args[1])
			if err != nil {
				return err
			}
			canonical, err := eng.Canonical(runCtx, tl)
			if err != nil {
				return fmt.Errorf("serialize: %w", err)
			}
			summary := engine.Summarize(tl)
			issues := eng.Check(runCtx, tl)

			return ctx.withCatalog(func(store *catalog.Store) error {
				stored, err := store.Put(runCtx, catalog.Entry{
					Name:            name,
					Document:        canonical,
					Precision:       eng.Precision(),
					IssueCount:      len(issues),
					TrackCount:      summary.Tracks,
					DurationSeconds: summary.Duration.Seconds(),
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Stored %s (%s, %s)\n", stored.Name, shortDigest(stored.Digest), countLabel(stored.IssueCount, "issue", "issues"))

				names, err := store.FindByDigest(runCtx, stored.Digest)
				if err != nil {
					return err
				}
				for _, other := range names {
					if other != stored.Name {
						fmt.Fprintf(out, "Identical to %s\n", other)
					}
				}
				return nil
			})
		},
	}
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(store *catalog.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]catalogEntryView, 0, len(entries))
					for _, e := range entries {
						views = append(views, newCatalogEntryView(e))
					}
					return writeJSON(cmd, views)
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintf(out, "Catalog is empty (%s)\n", store.Path())
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.Name,
						shortDigest(e.Digest),
						precisionLabel(e.Precision),
						countPrinter.Sprintf("%d", e.IssueCount),
						countPrinter.Sprintf("%d", e.TrackCount),
						fmt.Sprintf("%.3fs", e.DurationSeconds),
						e.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
					})
				}
				fmt.Fprintln(out, renderTable(tableLayout{
					headers:  []string{"Name", "Digest", "Precision", "Issues", "Tracks", "Duration", "Updated"},
					aligns:   []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
					colorize: shouldColorize(out),
				}, rows))
				fmt.Fprintf(out, "%s in %s\n", countLabel(len(entries), "entry", "entries"), store.Path())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit entries as JSON")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print the stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(store *catalog.Store) error {
				entry, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !pretty {
					_, err := fmt.Fprintf(out, "%s\n", entry.Document)
					return err
				}
				eng, err := ctx.ensureEngine()
				if err != nil {
					return err
				}
				runCtx := ctx.runContext(cmd, entry.Name)
				tl, err := eng.Load(runCtx, entry.Document)
				if err != nil {
					return fmt.Errorf("stored document %s: %w", entry.Name, err)
				}
				data, err := eng.Encode(runCtx, tl, engine.WithPrecision(entry.Precision), engine.WithPretty(true))
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the stored document")
	return cmd
}

func newCatalogVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify NAME FILE",
		Short: "Check that FILE serializes to the stored canonical form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, tl, runCtx, err := ctx.loadDocument(cmd, args[1])
			if err != nil {
				return err
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				entry, err := store.Get(runCtx, args[0])
				if err != nil {
					return err
				}
				data, err := eng.Encode(runCtx, tl, engine.WithPrecision(entry.Precision), engine.WithPretty(false))
				if err != nil {
					return fmt.Errorf("serialize: %w", err)
				}
				data = bytes.TrimSuffix(data, []byte("\n"))

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				label := documentLabel(args[1])
				if digest := catalog.Digest(data); digest != entry.Digest {
					fmt.Fprintln(out, renderStatusLine(label, statusError,
						fmt.Sprintf("differs from %s (%s != %s)", entry.Name, shortDigest(digest), shortDigest(entry.Digest)), colorize))
					return fmt.Errorf("%s does not match catalog entry %s", label, entry.Name)
				}
				fmt.Fprintln(out, renderStatusLine(label, statusOK, "matches "+entry.Name, colorize))
				return nil
			})
		},
	}
}

func newCatalogRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Delete a catalog entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(store *catalog.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}
