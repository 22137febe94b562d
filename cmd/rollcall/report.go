package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/rollcall/internal/export"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

func (c *cli) reportCmd() *cobra.Command {
	var (
		start, end, xlsxPath string
		includeUnregistered  bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the daily attendance report for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.client().Report(cmd.Context(), start, end, includeUnregistered)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			if xlsxPath == "" {
				return nil
			}
			return writeXLSX(xlsxPath, rep)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&end, "end", "", "last date, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&includeUnregistered, "include-unregistered", false, "also report badges with no registered person")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the report to this .xlsx file")
	return cmd
}

func printReport(out io.Writer, rep types.Report) {
	if len(rep.Rows) == 0 {
		msg := rep.Message
		if msg == "" {
			msg = "No records found"
		}
		fmt.Fprintln(out, msg)
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DATE\tTAG\tNAME\tEMPLOYEE ID\tFIRST IN\tLAST OUT\tIN\tOUT\tHOURS")
	for _, r := range rep.Rows {
		name := r.Name
		if !r.Registered {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Date, r.TagID, name, r.EmployeeID, r.FirstIn, r.LastOut,
			r.CheckinCount, r.CheckoutCount, r.WorkingHours)
	}
	_ = w.Flush()
}

func writeXLSX(path string, rep types.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteReportXLSX(f, rep)
}
