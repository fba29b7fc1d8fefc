package llm

import "errors"

var (
	// ErrProvider is returned when a provider request fails at the transport
	// or HTTP level. A non-2xx status is always a hard failure, never an
	// empty success.
	ErrProvider = errors.New("provider request failed")
	// ErrDimensionMismatch is returned when the embedding provider returns a
	// vector whose length differs from the configured dimension. It is fatal:
	// a wrong-dimension vector would corrupt the shared index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is sent.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32
}
