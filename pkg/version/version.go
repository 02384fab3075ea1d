// Package version provides version information for the proxybind library.
package version

// Version is the current version of the library.
const Version = "0.3.0"

// GetVersion returns the current version of the library.
func GetVersion() string {
	return Version
}
