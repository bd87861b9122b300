// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Lending Core (internal/borrow/interfaces.go)
//
//   - Ledger: per-book copy counters with conditional decrement and increment
//   - RecordStore: borrow records inside a transaction
//   - UnitOfWork: runs a function against a transaction-bound Ledger and RecordStore
//   - LoanReader: the read side, used by listings and reports
//   - Catalog, Users: lookup collaborators
//   - Recorder: receives borrow, return and inconsistency events
//
// ## HTTP (internal/http)
//
//   - Pinger: database liveness for /health
//   - BookResolver: resolves BOOK-XXXXXX identifiers in paths
//   - TaskQueue: enqueues and inspects background tasks
//
// ## Background Work (internal/tasks)
//
//   - OverdueLister, ScanRecorder: inputs of the overdue scan
//   - AuditEventCleaner: audit retention
//
// # Adding a New Copy Store
//
// The ledger and record store are swapped together because the service relies on
// them sharing a transaction:
//
//  1. Implement Ledger and RecordStore on top of the new transaction type
//
//  2. Implement UnitOfWork so Atomically hands both to the callback and rolls back
//     when it returns an error
//
//  3. Add compile-time checks:
//
//     var _ borrow.UnitOfWork = (*MyDatabase)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
