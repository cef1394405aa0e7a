// Package driving defines the entry-point interfaces the CLI drives:
// the ingest pass, the reconcile passes and the status reporter,
// together with their run reports.
package driving
