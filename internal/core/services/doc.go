// Package services contains the core business logic of the content
// pipeline: ingesting source files into the taxonomy and the
// reconciliation passes that keep the persisted corpus clean.
//
// Services implement the driving ports and depend only on driven ports,
// so every pass can be tested against the in-memory store.
package services
