package version

// Set at build time with -ldflags "-X soundwarden/internal/version.Version=...".
var (
	AppName   = "soundwarden"
	Version   = "dev"
	BuildDate = "unknown"
)

// String returns the one-line version banner logged at startup.
func String() string {
	return AppName + " " + Version + " (" + BuildDate + ")"
}
