// Package models holds the GORM row types of the ledger tables and their
// mappers to and from the domain aggregates. Domain types carry no GORM tags.
//
// The SQL migrations are the schema of record; the tags here only need to be
// precise enough for AutoMigrate to build an equivalent SQLite schema in tests.
// Every table carries tenant_id, and account codes and document numbers are
// unique per tenant.
package models
