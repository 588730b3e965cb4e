// Package service has the business logic for grammarlab's server,
// decoupled from the HTTP layer that exposes it, following the same
// split the existing API/backend-service convention in this codebase uses
// (API handlers call into a Service; the Service is the only thing that
// touches persistence and the core grammar/table/driver packages).
package service

import (
	"github.com/dekarrin/grammarlab/server/dao"
)

// Service ties the core LR(1) analyzer (package grammar/table/driver/present)
// to persistence. The zero value is not ready to use; assign a valid Store
// to DB first.
type Service struct {
	// DB is the persistence store the service reads from and writes to.
	DB dao.Store
}
