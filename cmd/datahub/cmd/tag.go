// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/model"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Commands to manage tags",
	Long:  `Commands to manage the tags of a dataset. A tag is an immutable name for a commit.`,
}

var tagCreate = &cobra.Command{
	Use:   "create NAME",
	Short: "Tag a commit",
	Long:  "Tag a revision, defaulting to the checked out commit.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		rev := datahubFlags.revision.Revision
		datahubFlags.revision.Revision = ""
		d := mustOpenDataset(ctx)
		if err := d.CreateTag(ctx, args[0], rev); err != nil {
			wrapFatalln("create tag", err)
			return
		}
		infoLogger.Printf("created tag %s", args[0])
	},
}

var tagList = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the tags of a dataset",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		tags, err := d.ListTags().All(ctx)
		if err != nil {
			wrapFatalln("list tags", err)
			return
		}
		render(tags, FormatterFunc(func(w io.Writer, data interface{}) error {
			table := newTable("TAG", "COMMIT", "TITLE")
			for _, tag := range data.([]model.Tag) {
				table.AddRow(tag.Name, tag.CommitID, tag.Title)
			}
			return writeTable(w, table)
		}))
	},
}

var tagDelete = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"delete"},
	Short:   "Delete a tag",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		if err := d.DeleteTag(ctx, args[0]); err != nil {
			wrapFatalln("delete tag", err)
			return
		}
		infoLogger.Printf("deleted tag %s", args[0])
	},
}

func init() {
	markRequired(tagCreate, addDatasetFlag(tagCreate))
	addRevisionFlag(tagCreate)

	markRequired(tagList, addDatasetFlag(tagList))

	markRequired(tagDelete, addDatasetFlag(tagDelete))

	tagCmd.AddCommand(tagCreate, tagList, tagDelete)
	rootCmd.AddCommand(tagCmd)
}
