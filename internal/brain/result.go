// Package brain produces conversational replies from a remote language
// model.
package brain

// Kind classifies one reply attempt.
type Kind int

const (
	// KindOk means the model returned usable reply text.
	KindOk Kind = iota
	// KindBlocked means the model refused the prompt on safety grounds.
	KindBlocked
	// KindEmpty means the model answered but produced no text.
	KindEmpty
	// KindUnavailable means the client has no credential, so no request
	// was attempted.
	KindUnavailable
	// KindFailed covers every request failure, transport errors and
	// non-OK statuses included.
	KindFailed
)

// Reply is the outcome of one model exchange. Callers branch on Kind; Text
// is set only for KindOk, BlockReason only for KindBlocked.
type Reply struct {
	Kind        Kind
	Text        string
	BlockReason string
}

func replyOk(text string) Reply {
	return Reply{Kind: KindOk, Text: text}
}
