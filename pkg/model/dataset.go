package model

// DefaultBranch is the branch checked out on a freshly created dataset
const DefaultBranch = "main"

// Dataset identifies a remote dataset. It is immutable once obtained.
type Dataset struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Alias         string `json:"alias,omitempty" yaml:"alias,omitempty"`
	IsPublic      bool   `json:"isPublic" yaml:"isPublic"`
	IsFusion      bool   `json:"isFusion" yaml:"isFusion"`
	DefaultBranch string `json:"defaultBranch,omitempty" yaml:"defaultBranch,omitempty"`
	_             struct{}
}

// Branch returns the default branch of this dataset
func (d Dataset) Branch() string {
	if d.DefaultBranch == "" {
		return DefaultBranch
	}
	return d.DefaultBranch
}

// Datasets is a sortable slice of Dataset
type Datasets []Dataset

func (b Datasets) Swap(i, j int) {
	b[i], b[j] = b[j], b[i]
}
func (b Datasets) Len() int {
	return len(b)
}
func (b Datasets) Less(i, j int) bool {
	return b[i].Name < b[j].Name
}

// Notes hold dataset-wide settings
type Notes struct {
	IsContinuous        bool     `json:"isContinuous" yaml:"isContinuous"`
	BinPointCloudFields []string `json:"binPointCloudFields,omitempty" yaml:"binPointCloudFields,omitempty"`
}
