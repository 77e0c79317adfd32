// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/model"
)

const allDrafts = "ALL"

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Commands to manage drafts",
	Long: `Commands to manage drafts.

A draft is opened on a branch and accepts changes until it is committed or closed.
Creating a draft checks it out.
`,
}

var draftCreate = &cobra.Command{
	Use:   "create",
	Short: "Create a draft",
	Long:  "Create a draft on a branch, and check it out. The branch defaults to the checked out branch.",
	Example: `% datahub draft create --dataset cars --message "add night images"
created draft #3 on branch "main"`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		n, err := d.CreateDraft(ctx, datahubFlags.draft.Title, datahubFlags.draft.Description, datahubFlags.draft.Branch)
		if err != nil {
			wrapFatalln("create draft", err)
			return
		}
		remember(d.Dataset().Name, d.Status())
		infoLogger.Printf("created %s", color.GreenString(d.Status().String()))
		_, _ = fmt.Fprintln(out, n)
	},
}

var draftList = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List drafts",
	Long:    "List the drafts of a dataset, filtered by status and branch.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		draftStatus := model.DraftStatus(strings.ToUpper(datahubFlags.draft.Status))
		switch {
		case draftStatus == allDrafts:
			draftStatus = ""
		case !draftStatus.IsValid():
			wrapFatalWithCodef(2, "invalid draft status %q", datahubFlags.draft.Status)
			return
		}
		d := mustOpenDataset(ctx)
		drafts, err := d.ListDrafts(draftStatus, datahubFlags.draft.Branch).All(ctx)
		if err != nil {
			wrapFatalln("list drafts", err)
			return
		}
		current, _ := d.Status().DraftNumber()
		render(drafts, draftListFormatter(current))
	},
}

func draftListFormatter(current uint32) FormatterFunc {
	return func(w io.Writer, data interface{}) error {
		table := newTable("", "DRAFT", "TITLE", "BRANCH", "STATUS", "AUTHOR")
		for _, draft := range data.([]model.Draft) {
			marker := ""
			if draft.Number == current {
				marker = color.YellowString("*")
			}
			table.AddRow(marker, model.DraftRef(draft.Number), draft.Title, draft.BranchName, draft.Status, draft.Author.Name)
		}
		return writeTable(w, table)
	}
}

var draftClose = &cobra.Command{
	Use:   "close",
	Short: "Close a draft",
	Long:  "Close a draft without committing it. Closing the checked out draft moves back to the head of its branch.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		number := datahubFlags.revision.Draft
		// the draft to close may not be checked out
		datahubFlags.revision.Draft = 0
		d := mustOpenDataset(ctx)
		if err := d.CloseDraft(ctx, number); err != nil {
			wrapFatalln("close draft", err)
			return
		}
		remember(d.Dataset().Name, d.Status())
		infoLogger.Printf("closed draft %s", model.DraftRef(number))
	},
}

var draftUpdate = &cobra.Command{
	Use:   "update",
	Short: "Update the title and description of the checked out draft",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		if err := d.UpdateDraft(ctx, datahubFlags.draft.Title, datahubFlags.draft.Description); err != nil {
			wrapFatalln("update draft", err)
		}
	},
}

func init() {
	markRequired(draftCreate, addDatasetFlag(draftCreate), addTitleFlag(draftCreate))
	addDescriptionFlag(draftCreate)
	addBranchFlag(draftCreate)
	addRevisionFlag(draftCreate)

	markRequired(draftList, addDatasetFlag(draftList))
	addDraftStatusFlag(draftList)
	addBranchFlag(draftList)

	markRequired(draftClose, addDatasetFlag(draftClose), addDraftNumberFlag(draftClose))

	markRequired(draftUpdate, addDatasetFlag(draftUpdate), addTitleFlag(draftUpdate))
	addDescriptionFlag(draftUpdate)
	addDraftNumberFlag(draftUpdate)

	draftCmd.AddCommand(draftCreate, draftList, draftClose, draftUpdate)
	rootCmd.AddCommand(draftCmd)
}
