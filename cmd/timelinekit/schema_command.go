package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"timelinekit/internal/codec"
	"timelinekit/internal/docfile"
)

func newSchemaCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:         "schema",
		Short:       "Print the JSON Schema of the document format",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := docfile.Stdio
			if outputPath != "" {
				target = outputPath
			}
			if err := docfile.Write(cmd.Context(), target, codec.JSONSchema(), cmd.OutOrStdout()); err != nil {
				return err
			}
			if target != docfile.Stdio {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote schema to %s\n", target)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the schema to this path instead of stdout")
	return cmd
}
