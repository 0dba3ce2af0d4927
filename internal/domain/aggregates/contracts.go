package aggregates

import "github.com/google/uuid"

type WriteTxOwnership string

// WriteTxOwnedByAggregate: write methods open and commit their own transaction.
const WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"

type ReadPolicy string

const (
	// ReadPolicyInvariantScoped: the aggregate reads only what its invariants need.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
	// ReadPolicyTableRepoQueries: list and search reads stay on the table repos.
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

// Contract is the policy an aggregate promises to its callers.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	// LockScope prefixes the per-entity advisory lock name.
	LockScope string
	Notes     string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// LockKey names the advisory lock serializing writes to one entity.
// An empty LockScope means the aggregate does not lock.
func (c Contract) LockKey(id uuid.UUID) string {
	if c.LockScope == "" {
		return ""
	}
	return c.LockScope + ":" + id.String()
}
