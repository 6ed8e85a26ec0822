// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TextExtractor: Pulls page texts out of an upload
//   - ExtractorRegistry: Selects the extractor for a MIME type
//   - Chunker: Splits document text into overlapping windows
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Exact inner-product search over embeddings
//   - IndexStore: Persists the vector blob and side-table as a pair
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Chat completion. Without it, answers and attribute
//     extraction are disabled and matching falls back to semantic scores.
//   - PromptStore: Customisable prompts. Without it, defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
