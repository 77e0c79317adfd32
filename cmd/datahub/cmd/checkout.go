// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/core"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Check out a revision or a draft",
	Long: `Check out a revision or an open draft of a dataset.

A revision is resolved as a branch name first, then as a tag, then as a commit id.
The checked out revision is used by the next commands on this dataset.
`,
	Example: `% datahub checkout --dataset cars --revision v1.2
% datahub checkout --dataset cars --draft 3`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if datahubFlags.revision.Revision == "" && datahubFlags.revision.Draft == 0 {
			wrapFatalWithCodef(2, "a --revision or a --draft is required")
			return
		}
		d, err := mustClient().GetDataset(ctx, datahubFlags.dataset.Name)
		if err != nil {
			wrapFatalln("get dataset", err)
			return
		}
		err = d.Checkout(ctx, core.CheckoutTarget{
			Revision:    datahubFlags.revision.Revision,
			DraftNumber: datahubFlags.revision.Draft,
		})
		if err != nil {
			wrapFatalln("checkout", err)
			return
		}
		remember(d.Dataset().Name, d.Status())
		infoLogger.Printf("checked out %s", color.GreenString(d.Status().String()))
	},
}

func init() {
	markRequired(checkoutCmd, addDatasetFlag(checkoutCmd))
	addRevisionFlag(checkoutCmd)
	addDraftNumberFlag(checkoutCmd)
	rootCmd.AddCommand(checkoutCmd)
}
