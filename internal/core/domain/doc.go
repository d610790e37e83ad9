// Package domain contains the core entities of the question-answering
// pipeline: chunks, retrieval candidates, query results and domain errors.
// It has no dependencies on adapters or infrastructure.
package domain
