package headers

import (
	"strings"

	"go.uber.org/zap"
)

// Parse builds a detached collection from a raw header block with fault
// tolerance: lines may end in \r\n or \n, a blank line ends the block, and
// malformed lines (no colon, invalid name) are skipped rather than failing
// the parse. Field order and repeats are preserved.
func Parse(data []byte, log *zap.Logger) *Headers {
	if log == nil {
		log = zap.NewNop()
	}
	h := NewDetached()
	h.SetLogger(log)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			break
		}
		colon := strings.Index(line, ":")
		if colon == -1 {
			log.Debug("skipping header line without separator", zap.String("line", line))
			continue
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if err := h.Append(name, value); err != nil {
			log.Debug("skipping malformed header line", zap.String("line", line), zap.Error(err))
		}
	}
	return h
}
