package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

func (c *cli) scanCmd() *cobra.Command {
	var (
		req             types.ScanRequest
		signal, battery int
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Send one badge scan to a running server, as a device would",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("signal") {
				req.Signal = &signal
			}
			if cmd.Flags().Changed("battery") {
				req.Battery = &battery
			}
			res, err := c.client().Scan(cmd.Context(), req)
			if err != nil {
				return err
			}
			name := res.UserName
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tdevice=%s\tseq=%d\tat=%s\n",
				res.AttendanceType, res.TagID, name, res.DeviceID, res.Sequence, res.ScanTime)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Tag, "tag", "", "badge id")
	cmd.Flags().StringVar(&req.TagID, "tag-id", "", "badge id, used when --tag is empty")
	cmd.Flags().StringVar(&req.DeviceID, "device", "", "reporting device id")
	cmd.Flags().IntVar(&signal, "signal", 0, "signal strength")
	cmd.Flags().IntVar(&battery, "battery", 0, "battery level")
	return cmd
}
