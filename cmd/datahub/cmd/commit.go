// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the checked out draft",
	Long: `Commit the checked out draft as a new revision of its branch.

The head of the branch is checked out after the commit.
`,
	Example: `% datahub commit --dataset cars --message "night images" --tag v1.2
3f1c9a...`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		commitID, err := d.Commit(ctx, datahubFlags.draft.Title, datahubFlags.draft.Description, datahubFlags.commit.Tag)
		if err != nil {
			wrapFatalln("commit", err)
			return
		}
		remember(d.Dataset().Name, d.Status())
		infoLogger.Printf("committed %s", color.GreenString(d.Status().String()))
		_, _ = fmt.Fprintln(out, commitID)
	},
}

func init() {
	markRequired(commitCmd, addDatasetFlag(commitCmd), addTitleFlag(commitCmd))
	addDescriptionFlag(commitCmd)
	addTagFlag(commitCmd)
	addDraftNumberFlag(commitCmd)
	rootCmd.AddCommand(commitCmd)
}
