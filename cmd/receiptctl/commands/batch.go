package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zombor/receipt-ocr/internal/export"
)

func batchCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Extract every receipt in a directory into an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return err
			}

			var paths []string
			for _, e := range entries {
				if e.IsDir() || !isReceiptFile(e.Name()) {
					continue
				}
				paths = append(paths, filepath.Join(args[0], e.Name()))
			}
			sort.Strings(paths)

			rows := make([]export.Row, 0, len(paths))
			for _, path := range paths {
				text, err := readReceiptText(cmd.Context(), path)
				if err != nil {
					slog.Warn("Skipping receipt", "file", path, "error", err)
					rows = append(rows, export.Row{Source: path, Err: err})
					continue
				}
				rows = append(rows, export.Row{Source: path, Result: extractor.Extract(text)})
			}

			data, err := export.ResultsXLSX(rows)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %d receipts to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "results.xlsx", "output workbook path")
	return cmd
}
