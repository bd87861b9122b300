// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, pragmas, migrations, transactions
//	├── ledger/          # Copy ledger: conditional available_copies updates
//	├── borrows/         # Borrow record store and loan listings
//	├── catalog/         # Books and categories (catalog collaborator)
//	├── users/           # User lookups (user collaborator)
//	└── audit/           # Audit event persistence
//
// # Transactions
//
// Borrowing and returning touch the ledger and the record store together. The
// Database type implements borrow.UnitOfWork: Atomically opens a gorm transaction
// and hands the callback a ledger and record store bound to it.
//
//	db, err := database.NewDatabase("./library.db")
//	err = db.Atomically(ctx, func(tx borrow.Tx) error {
//		if err := tx.Ledger().TryDecrement(ctx, bookID); err != nil {
//			return err
//		}
//		return tx.Records().Create(ctx, record)
//	})
//
// The pool is capped at one open connection, so transactions are serialized.
// Code running inside Atomically must only use the repositories it was given.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
