package ai

import "site-safety-inspection/parser"

// Client abstracts the hosted multimodal AI backend.
// Implementations must be concurrency-safe if used across goroutines.
// Any transport or service fault surfaces as a BackendError; ill-formed
// response text is returned as-is for the caller to degrade gracefully.
type Client interface {
	// Filter is the cheap hazard-presence pre-screen for one image.
	Filter(question string, image []byte) (bool, error)
	// Classify runs multi-label classification restricted to the given
	// closed category vocabulary. The result shape is loose by design;
	// callers extract labels via parser.ExtractLabels.
	Classify(image []byte, categories []string) (parser.ClassifyResult, error)
	// Complete is general free-text completion. A nil image makes a
	// text-only call (used for site-level action summarization).
	Complete(prompt string, image []byte) (string, error)
	// SourceName returns a short provider label (e.g., "ChatGPT", "Stub").
	SourceName() string
}
