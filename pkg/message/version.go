package message

// Version is the closed set of protocol versions this wrapper
// distinguishes.
type Version int

const (
	VersionUnknown Version = iota
	Version09
	Version10
	Version11
	Version2
	Version3
)

var versionTokens = map[string]Version{
	"HTTP/0.9": Version09,
	"HTTP/1.0": Version10,
	"HTTP/1.1": Version11,
	"HTTP/2":   Version2,
	"HTTP/2.0": Version2,
	"HTTP/3":   Version3,
}

var versionStrings = map[Version]string{
	VersionUnknown: "UNKNOWN",
	Version09:      "HTTP/0.9",
	Version10:      "HTTP/1.0",
	Version11:      "HTTP/1.1",
	Version2:       "HTTP/2",
	Version3:       "HTTP/3",
}

func (v Version) String() string {
	if s, ok := versionStrings[v]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseVersionToken maps a raw engine version token to a Version.
// Unrecognized tokens map to VersionUnknown.
func ParseVersionToken(token string) Version {
	if v, ok := versionTokens[token]; ok {
		return v
	}
	return VersionUnknown
}
