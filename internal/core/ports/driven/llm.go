package driven

import "context"

// AnswerGenerator produces a grounded answer from retrieved context via a
// hosted language model. Implementations issue a single synchronous call with
// a strict grounding instruction and near-zero temperature, and perform no
// retries: any failure is returned to the caller, which falls back to
// extraction rather than retrying the network call.
type AnswerGenerator interface {
	// GenerateAnswer answers the question using only the supplied context.
	// The backend is instructed to reply with
	// domain.InsufficientContextSentinel when the context does not support
	// an answer. Failures wrap domain.ErrGenerationFailed.
	GenerateAnswer(ctx context.Context, question, passages string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string
}
