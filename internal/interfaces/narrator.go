package interfaces

import "context"

// Narrator turns a prompt into narrative text through an external model.
type Narrator interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// Stream calls onChunk for each text fragment as it arrives. Returning an
	// error from onChunk stops the stream.
	Stream(ctx context.Context, system, user string, onChunk func(string) error) error
}
