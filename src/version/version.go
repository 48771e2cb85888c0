package version

// Flag contains extra info about the version, such as "rc1". It is empty on
// release builds.
const Flag = ""

var (
	// Version is the full version string
	Version = "0.3.0"

	// GitCommit is set with --ldflags "-X version.GitCommit=$(git rev-parse HEAD)"
	GitCommit string
)

func init() {
	if Flag != "" {
		Version += "-" + Flag
	}

	if len(GitCommit) >= 8 {
		Version += "-" + GitCommit[:8]
	}
}
