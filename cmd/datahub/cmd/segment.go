package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/model"
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Commands to manage the segments of the checked out draft",
}

var segmentDelete = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"delete"},
	Short:   "Delete a segment",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := mustOpenDataset(ctx).DeleteSegment(ctx, args[0]); err != nil {
			wrapFatalln("delete segment", err)
			return
		}
		infoLogger.Printf("deleted segment %s", args[0])
	},
}

var segmentMove = &cobra.Command{
	Use:   "mv SOURCE TARGET",
	Short: "Rename a segment",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		if err := d.MoveSegment(ctx, args[0], args[1], model.MoveStrategy(datahubFlags.segment.Strategy)); err != nil {
			wrapFatalln("move segment", err)
		}
	},
}

var segmentCopy = &cobra.Command{
	Use:   "cp SOURCE TARGET",
	Short: "Copy a segment",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		if err := d.CopySegment(ctx, args[0], args[1], model.MoveStrategy(datahubFlags.segment.Strategy)); err != nil {
			wrapFatalln("copy segment", err)
		}
	},
}

func init() {
	for _, cmd := range []*cobra.Command{segmentDelete, segmentMove, segmentCopy} {
		markRequired(cmd, addDatasetFlag(cmd))
		addDraftNumberFlag(cmd)
	}
	addStrategyFlag(segmentMove)
	addStrategyFlag(segmentCopy)

	segmentCmd.AddCommand(segmentDelete, segmentMove, segmentCopy)
	rootCmd.AddCommand(segmentCmd)
}
