package version

import "strings"

type Version struct {
	Version string `json:"version"`
}

func New(version string) *Version {
	return &Version{Version: strings.TrimSpace(version)}
}

func (v *Version) String() string {
	if v.Version == "" {
		return "dev"
	}

	return v.Version
}
