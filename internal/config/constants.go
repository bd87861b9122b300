package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./library.db"
)

// Loan period bounds, in days.
const (
	DefaultBorrowMinDays = 1
	DefaultBorrowMaxDays = 30
)
