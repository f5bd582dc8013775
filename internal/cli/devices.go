package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"postured/internal/registry"
)

func newDevicesCmd() *cobra.Command {
	var devDir string
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List video capture devices as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devs, err := registry.LoadDevices(devDir)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, d := range devs {
				if err := enc.Encode(d); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&devDir, "dev-dir", registry.DefaultDevDir, "Directory holding videoN nodes")
	_ = cmd.Flags().MarkHidden("dev-dir")
	return cmd
}
