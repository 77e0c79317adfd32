// Package model describes the base objects manipulated by datahub.
//
// The object model for datahub is composed of:
//
//  Datasets:
//    A dataset is analogous to a git repo. A dataset has a unified lifecycle and
//    a revision graph made of branches, drafts and commits.
//
//  Drafts:
//    A draft is a mutable, uncommitted revision of a dataset, opened on a branch.
//    This is the only state in which writes are permitted.
//
//  Commits:
//    An immutable revision produced by closing a draft. Branches point to their latest commit,
//    tags are immutable aliases for a commit.
//
//  Segments:
//    A named partition of a dataset. Plain segments hold data items. Fusion segments
//    hold time-ordered frames spanning several named sensors.
//
//  Leases:
//    Short-lived, segment-scoped upload credentials issued by the server.
package model
