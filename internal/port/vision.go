package port

import "context"

// CompletionInput carries one prompt and one source image (or single-page
// PDF) for a vision model call.
type CompletionInput struct {
	Prompt      string
	Image       []byte
	ContentType string
}

// VisionModel abstracts the external vision model behind a single
// complete(prompt, image) -> text call. The implementation owns the
// network timeout.
type VisionModel interface {
	Complete(ctx context.Context, input CompletionInput) (string, error)
}
