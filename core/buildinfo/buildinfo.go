package buildinfo

// These variables are intended to be set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/rompostbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/rompostbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/rompostbot/core/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	// Version reports the release tag of the running binary.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String renders the build identity on one line.
func String() string {
	if Date == "" {
		return Version + " (" + Commit + ")"
	}
	return Version + " (" + Commit + ", " + Date + ")"
}
