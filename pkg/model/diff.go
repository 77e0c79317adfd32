package model

// DiffAction qualifies how an entry differs between two revisions
type DiffAction string

const (
	// DiffAdd indicates the head revision exhibits an extra entry
	DiffAdd DiffAction = "add"

	// DiffModify indicates the entry differs between revisions
	DiffModify DiffAction = "modify"

	// DiffDelete indicates the head revision exhibits a missing entry
	DiffDelete DiffAction = "delete"

	// DiffNone indicates identical entries
	DiffNone DiffAction = "none"
)

// String renders a short form, as in a git status
func (a DiffAction) String() string {
	diffActionStrings := map[DiffAction]string{
		DiffAdd:    "A",
		DiffModify: "M",
		DiffDelete: "D",
		DiffNone:   " ",
	}
	if s, ok := diffActionStrings[a]; ok {
		return s
	}
	return "?"
}

// Changed tells if this action denotes any difference
func (a DiffAction) Changed() bool {
	return a != DiffNone && a != ""
}

// SegmentDiff describes how a segment differs between two revisions
type SegmentDiff struct {
	Name   string     `json:"name" yaml:"name"`
	Action DiffAction `json:"action" yaml:"action"`
}

// ActionDiff describes a single aspect of a difference
type ActionDiff struct {
	Action DiffAction `json:"action" yaml:"action"`
}

// DataDiff describes how a data item differs between two revisions
type DataDiff struct {
	RemotePath string     `json:"remotePath" yaml:"remotePath"`
	Action     DiffAction `json:"action" yaml:"action"`
	File       ActionDiff `json:"file" yaml:"file"`
	Label      ActionDiff `json:"label" yaml:"label"`
}
