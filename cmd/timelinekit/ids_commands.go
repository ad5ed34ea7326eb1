package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"timelinekit/internal/docfile"
	"timelinekit/internal/index"
	"timelinekit/internal/model"
)

func newIDsCommand(ctx *commandContext) *cobra.Command {
	idsCmd := &cobra.Command{
		Use:   "ids",
		Short: "Manage stable entity identifiers stored in metadata",
	}

	idsCmd.AddCommand(newIDsAssignCommand(ctx))
	idsCmd.AddCommand(newIDsListCommand(ctx))

	return idsCmd
}

func newIDsAssignCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var write bool

	cmd := &cobra.Command{
		Use:   "assign FILE",
		Short: "Give every track, clip, gap and transition without an id a new one",
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
			assigned := index.Assign(tl, eng.Config().IDs.Namespace)
			if !write || assigned > 0 {
				data, err := eng.Encode(runCtx, tl)
				if err != nil {
					return fmt.Errorf("serialize: %w", err)
				}
				if err := docfile.Write(runCtx, target, data, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			fmt.Fprintf(infoWriter(cmd, target), "Assigned %s\n", countLabel(assigned, "id", "ids"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the document to this path")
	cmd.Flags().BoolVar(&write, "write", false, "Replace FILE with the updated document")
	cmd.MarkFlagsMutuallyExclusive("output", "write")
	return cmd
}

type idView struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Track int    `json:"track"`
	Item  *int   `json:"item"`
}

type idListView struct {
	IDs        []idView `json:"ids"`
	Duplicates []string `json:"duplicates"`
}

func entityName(e model.Entity) string {
	switch v := e.(type) {
	case *model.Track:
		return v.Name
	case *model.Clip:
		return v.Name
	case *model.Gap:
		return v.Name
	case *model.Transition:
		return v.Name
	default:
		return ""
	}
}

func newIDsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list FILE",
		Short: "List identified entities and report duplicate ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, tl, _, err := ctx.loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			idx := index.Build(tl, eng.Config().IDs.Namespace)
			view := idListView{IDs: []idView{}, Duplicates: nonNil(idx.Duplicates())}
			for _, id := range idx.IDs() {
				loc, _ := idx.Lookup(id)
				entry := idView{ID: id, Kind: loc.Kind, Name: entityName(loc.Entity), Track: loc.Track}
				if loc.Item >= 0 {
					item := loc.Item
					entry.Item = &item
				}
				view.IDs = append(view.IDs, entry)
			}
			if jsonOutput {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if len(view.IDs) == 0 {
				fmt.Fprintln(out, "No identified entities")
			} else {
				rows := make([][]string, 0, len(view.IDs))
				for _, entry := range view.IDs {
					item := "-"
					if entry.Item != nil {
						item = strconv.Itoa(*entry.Item)
					}
					rows = append(rows, []string{entry.ID, entry.Kind, entry.Name, strconv.Itoa(entry.Track), item})
				}
				fmt.Fprintln(out, renderTable(tableLayout{
					headers:  []string{"ID", "Kind", "Name", "Track", "Item"},
					aligns:   []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
					colorize: colorize,
				}, rows))
			}
			for _, id := range view.Duplicates {
				fmt.Fprintln(out, renderStatusLine(id, statusWarn, "id used by more than one entity", colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit ids as JSON")
	return cmd
}
