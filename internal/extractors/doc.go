// Package extractors provides implementations of the TextExtractor interface.
// Each extractor knows how to pull page texts out of a specific MIME type.
//
// Extractors are registered with the Registry at startup.
package extractors
