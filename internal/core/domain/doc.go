// Package domain contains the core types of the content pipeline:
// the two-level taxonomy (Station, Section), persisted materials,
// extraction results and title normalisation.
//
// Domain types have no dependencies on adapters or external services.
package domain
