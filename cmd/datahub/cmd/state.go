package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/datahub/pkg/core/revision"
)

const stateFileName = ".datahub/state.yaml"

// stateFs holds the state file
var stateFs = afero.NewOsFs()

// checkedOut is the revision of a dataset picked by the last checkout
type checkedOut struct {
	Revision string `yaml:"revision,omitempty"`
	Draft    uint32 `yaml:"draft,omitempty"`
}

// checkoutState keeps track of the checked out revision of each dataset, per profile
type checkoutState struct {
	Profiles map[string]map[string]checkedOut `yaml:"profiles"`
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return stateFileName
	}
	return filepath.Join(home, stateFileName)
}

func loadState(fs afero.Fs, file string) (*checkoutState, error) {
	st := &checkoutState{Profiles: make(map[string]map[string]checkedOut)}
	b, err := afero.ReadFile(fs, file)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, st); err != nil {
		return nil, err
	}
	if st.Profiles == nil {
		st.Profiles = make(map[string]map[string]checkedOut)
	}
	return st, nil
}

func (s *checkoutState) save(fs afero.Fs, file string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}
	return afero.WriteFile(fs, file, b, 0600)
}

func (s *checkoutState) get(profile, dataset string) (checkedOut, bool) {
	co, ok := s.Profiles[profile][dataset]
	return co, ok
}

func (s *checkoutState) set(profile, dataset string, co checkedOut) {
	datasets, ok := s.Profiles[profile]
	if !ok {
		datasets = make(map[string]checkedOut)
		s.Profiles[profile] = datasets
	}
	datasets[dataset] = co
}

func (s *checkoutState) forget(profile, dataset string) {
	delete(s.Profiles[profile], dataset)
}

// checkedOutFrom the revision status of a dataset client
func checkedOutFrom(st revision.Status) checkedOut {
	if n, ok := st.DraftNumber(); ok {
		return checkedOut{Draft: n}
	}
	if branch := st.BranchName(); branch != "" {
		return checkedOut{Revision: branch}
	}
	commitID, _ := st.CommitID()
	return checkedOut{Revision: commitID}
}

func currentState() (*checkoutState, error) {
	return loadState(stateFs, viper.GetString(keyStateFile))
}

// remember the checked out revision of a dataset for the next commands
func remember(dataset string, st revision.Status) {
	state, err := currentState()
	if err != nil {
		wrapFatalln("loading checkout state", err)
		return
	}
	state.set(viper.GetString(keyProfile), dataset, checkedOutFrom(st))
	if err := state.save(stateFs, viper.GetString(keyStateFile)); err != nil {
		wrapFatalln("saving checkout state", err)
	}
}

func forget(dataset string) {
	state, err := currentState()
	if err != nil {
		wrapFatalln("loading checkout state", err)
		return
	}
	state.forget(viper.GetString(keyProfile), dataset)
	if err := state.save(stateFs, viper.GetString(keyStateFile)); err != nil {
		wrapFatalln("saving checkout state", err)
	}
}
