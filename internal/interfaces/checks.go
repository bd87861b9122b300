package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/lending/internal/audit"
	"github.com/mrlokans/lending/internal/auth"
	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/database"
	"github.com/mrlokans/lending/internal/database/borrows"
	"github.com/mrlokans/lending/internal/database/catalog"
	"github.com/mrlokans/lending/internal/database/ledger"
	"github.com/mrlokans/lending/internal/database/users"
	"github.com/mrlokans/lending/internal/entrypoint"
	"github.com/mrlokans/lending/internal/http"
	"github.com/mrlokans/lending/internal/reports"
	"github.com/mrlokans/lending/internal/tasks"
)

// =============================================================================
// Lending Core
// =============================================================================

var _ borrow.UnitOfWork = (*database.Database)(nil)
var _ borrow.Ledger = (*ledger.Repository)(nil)
var _ borrow.RecordStore = (*borrows.Repository)(nil)
var _ borrow.LoanReader = (*borrows.Repository)(nil)
var _ borrow.Catalog = (*catalog.Repository)(nil)
var _ borrow.Users = (*users.Repository)(nil)
var _ borrow.Recorder = (*audit.Service)(nil)

// =============================================================================
// Reports
// =============================================================================

var _ reports.CatalogReader = (*catalog.Repository)(nil)
var _ reports.UserCounter = (*users.Repository)(nil)

// =============================================================================
// HTTP
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
var _ http.BookResolver = (*catalog.Repository)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ auth.EventRecorder = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.OverdueLister = (*borrow.Service)(nil)
var _ tasks.ScanRecorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ entrypoint.Enqueuer = (*tasks.Client)(nil)
