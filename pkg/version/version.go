package version

import "fmt"

var (
	Version             = "0.1.0" // bumped by hand at each release, SemVer
	GitCommit, GitState string    // set by the build with -ldflags
	BuildDate           string    // set by the build with -ldflags
)

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s build=%s", Version, GitCommit, BuildDate)
}
