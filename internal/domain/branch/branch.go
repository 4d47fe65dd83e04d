package branch

import (
	"github.com/google/uuid"

	"github.com/storeops/backend/internal/domain/shared"
)

// Status is the operational state of a branch
type Status string

const (
	// StatusActive allows mutating operations against the branch
	StatusActive Status = "ACTIVE"
	// StatusFrozen is a tenant-declared suspension that blocks new mutations
	StatusFrozen Status = "FROZEN"
)

// Branch is one physical location of a tenant
type Branch struct {
	shared.TenantAggregateRoot
	Name     string
	Timezone string
	Status   Status
}

// NewBranch creates an active branch for a tenant
func NewBranch(tenantID uuid.UUID, name string) (*Branch, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "branch name is required")
	}
	return &Branch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Status:              StatusActive,
	}, nil
}

// Freeze suspends the branch
func (b *Branch) Freeze() {
	b.Status = StatusFrozen
}

// Unfreeze reactivates the branch
func (b *Branch) Unfreeze() {
	b.Status = StatusActive
}

// IsActive reports whether the branch accepts mutations
func (b *Branch) IsActive() bool {
	return b.Status == StatusActive
}

// ErrBranchFrozen is returned by the guard when a mutation targets a frozen
// branch. Callers match on the BRANCH_FROZEN code.
var ErrBranchFrozen = shared.NewDomainError("BRANCH_FROZEN", "branch is frozen and does not accept mutations")
