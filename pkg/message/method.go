package message

// Method is the closed set of HTTP methods this wrapper distinguishes.
// Anything outside it degrades to MethodUnknown rather than failing.
type Method int

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
	MethodHead
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPurge
	MethodICPQuery
)

var methodTokens = map[string]Method{
	"GET":       MethodGet,
	"POST":      MethodPost,
	"HEAD":      MethodHead,
	"PUT":       MethodPut,
	"DELETE":    MethodDelete,
	"CONNECT":   MethodConnect,
	"OPTIONS":   MethodOptions,
	"TRACE":     MethodTrace,
	"PURGE":     MethodPurge,
	"ICP_QUERY": MethodICPQuery,
}

var methodStrings = map[Method]string{
	MethodUnknown:  "UNKNOWN",
	MethodGet:      "GET",
	MethodPost:     "POST",
	MethodHead:     "HEAD",
	MethodPut:      "PUT",
	MethodDelete:   "DELETE",
	MethodConnect:  "CONNECT",
	MethodOptions:  "OPTIONS",
	MethodTrace:    "TRACE",
	MethodPurge:    "PURGE",
	MethodICPQuery: "ICP_QUERY",
}

func (m Method) String() string {
	if s, ok := methodStrings[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseMethodToken maps a raw engine method token to a Method. Tokens are
// matched exactly; unrecognized tokens map to MethodUnknown.
func ParseMethodToken(token string) Method {
	if m, ok := methodTokens[token]; ok {
		return m
	}
	return MethodUnknown
}
