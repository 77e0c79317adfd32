package cmd

import (
	"context"
	"fmt"
	"io"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the total size of a dataset at a commit",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		size, err := d.TotalSize(ctx)
		if err != nil {
			wrapFatalln("total size", err)
			return
		}
		render(size, FormatterFunc(func(w io.Writer, data interface{}) error {
			n := data.(int64)
			_, err := fmt.Fprintf(w, "%s (%d bytes)\n", units.HumanSize(float64(n)), n)
			return err
		}))
	},
}

func init() {
	markRequired(sizeCmd, addDatasetFlag(sizeCmd))
	addRevisionFlag(sizeCmd)
	rootCmd.AddCommand(sizeCmd)
}
