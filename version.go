package i8n

// Name and Version identify the library, as sent in the User-Agent of
// backend requests.
const (
	Name    = "i8n"
	Version = "0.1.0"
)

// Build metadata, set with
//
//	go build -ldflags "-X github.com/ZaguanLabs/i8n.GitCommit=$(git rev-parse HEAD)"
var (
	GitCommit = ""
	BuildDate = ""
)

// FullVersion returns Version with the short commit appended when known.
func FullVersion() string {
	if len(GitCommit) > 7 {
		return Version + "+" + GitCommit[:7]
	}
	if GitCommit != "" {
		return Version + "+" + GitCommit
	}
	return Version
}

// UserAgent returns the User-Agent sent to remote backends.
func UserAgent() string {
	return Name + "/" + FullVersion()
}
