package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var cacheDir string

var catCmd = &cobra.Command{
	Use:   "cat PATH",
	Short: "Print the content of a data file",
	Long: `Print the content of a data file from a segment.

With --cache-dir, data read at a commit are kept locally and read from there the next time.
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		if cacheDir != "" && d.Status().IsCommit() {
			if err := d.EnableCache(cacheDir); err != nil {
				wrapFatalln("enable cache", err)
				return
			}
		}
		seg, err := d.GetSegment(ctx, datahubFlags.segment.Name)
		if err != nil {
			wrapFatalln("get segment", err)
			return
		}
		rc, err := seg.OpenData(ctx, args[0])
		if err != nil {
			wrapFatalln("open data", err)
			return
		}
		_, err = io.Copy(out, rc)
		err = multierr.Append(err, rc.Close())
		if err != nil {
			wrapFatalln("read data", err)
		}
	},
}

func init() {
	markRequired(catCmd, addDatasetFlag(catCmd), addSegmentFlag(catCmd))
	addRevisionFlag(catCmd)
	addDraftNumberFlag(catCmd)
	catCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "A local directory to cache the data read at a commit")
	rootCmd.AddCommand(catCmd)
}
