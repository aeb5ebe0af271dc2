// Package extract infers an organization name from document text.
//
// The engine runs a cascade of strategies in order: the Gemini API, the
// Hugging Face inference API, and a deterministic table/URL fallback. Network
// strategies are best-effort; their faults never propagate past the engine,
// so extraction always terminates with a name or with nothing.
package extract
