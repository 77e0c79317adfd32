package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

const (
	profilesSection  = "profiles"
	endpointsSection = "endpoints"
	profilesFileName = ".datahubconfig"
)

// ErrNoProfile is returned when the profile is not defined in the profiles file
var ErrNoProfile = errors.New("profile not found")

// DefaultProfilesPath is the location of the profiles file in the user's home directory
func DefaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return profilesFileName
	}
	return filepath.Join(home, profilesFileName)
}

// LoadProfile reads the access key and endpoint for a named profile.
//
// The profiles file is an INI file like:
//
//  [profiles]
//  default = Accesskey-xxx
//
//  [endpoints]
//  default = https://api.example.com
func LoadProfile(path, name string) (ClientConfig, error) {
	cfg := Default()
	if name == "" {
		name = DefaultProfile
	}
	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("loading profiles from %s: %w", path, err)
	}
	key := f.Section(profilesSection).Key(name).String()
	if key == "" {
		return cfg, fmt.Errorf("%w: %q in %s", ErrNoProfile, name, path)
	}
	cfg.AccessKey = key
	if endpoint := f.Section(endpointsSection).Key(name).String(); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	return cfg, nil
}

// SaveProfile writes or updates a named profile. An empty endpoint leaves the endpoint unset for this profile.
func SaveProfile(path, name, accessKey, endpoint string) error {
	if name == "" {
		name = DefaultProfile
	}
	f, err := ini.LooseLoad(path)
	if err != nil {
		return err
	}
	f.Section(profilesSection).Key(name).SetValue(accessKey)
	if endpoint != "" {
		f.Section(endpointsSection).Key(name).SetValue(endpoint)
	} else {
		f.Section(endpointsSection).DeleteKey(name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return f.SaveTo(path)
}

// ListProfiles returns the names of all the profiles defined in the profiles file
func ListProfiles(path string) ([]string, error) {
	f, err := ini.LooseLoad(path)
	if err != nil {
		return nil, err
	}
	return f.Section(profilesSection).KeyStrings(), nil
}
