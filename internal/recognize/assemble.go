package recognize

import "strings"

// assemble joins recognized segments and collapses runs of whitespace so the
// transcript reads as one clean utterance.
func assemble(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	joined := strings.Join(segments, " ")
	return strings.Join(strings.Fields(joined), " ")
}
