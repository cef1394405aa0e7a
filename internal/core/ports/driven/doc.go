// Package driven defines the ports the pipeline core depends on:
// extractors, the persistence service, the asset store and configuration.
// Adapters implement these interfaces; the core never imports adapters.
package driven
