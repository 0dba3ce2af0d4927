package aggregates

import (
	"testing"

	"github.com/google/uuid"
)

func TestContractLockKey(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	got := ProductionRequestAggregateContract.LockKey(id)
	if want := "production_request:7c9e6679-7425-40de-944b-e07fc1f90ae7"; got != want {
		t.Fatalf("lock key: want=%s got=%s", want, got)
	}
	if got := (Contract{Name: "unlocked"}).LockKey(id); got != "" {
		t.Fatalf("unscoped lock key: want empty got=%s", got)
	}
	if !ProductionRequestAggregateContract.RequiresAggregateOwnedTx() {
		t.Fatalf("production request writes must own their transaction")
	}
}
