package service

import (
	"time"

	"qa-gate/internal/lifecycle"
	"qa-gate/internal/models"
	"qa-gate/internal/testutil"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// fakeCaps grants capabilities per actor id
type fakeCaps map[string][]lifecycle.Capability

func (f fakeCaps) Can(actor models.Actor, capability lifecycle.Capability) bool {
	for _, c := range f[actor.ID] {
		if c == capability {
			return true
		}
	}
	return false
}

var (
	requester = models.Actor{ID: "user-1", Roles: []string{"editor"}}
	reviewer  = models.Actor{ID: "qa-1", Roles: []string{"qa_manager"}}
	manager   = models.Actor{ID: "qa-2", Roles: []string{"qa_manager"}}
)

func testCaps() fakeCaps {
	all := []lifecycle.Capability{
		lifecycle.CapabilityQAApprove,
		lifecycle.CapabilityOverrideReview,
		lifecycle.CapabilityOverrideDirect,
	}
	return fakeCaps{reviewer.ID: all, manager.ID: all}
}

type (
	fakeApprovalStore = testutil.MemoryApprovalStore
	fakeOverrideStore = testutil.MemoryOverrideStore
	fakeDocumentStore = testutil.MemoryDocumentStore
)

func newFakeApprovalStore() *fakeApprovalStore { return testutil.NewMemoryApprovalStore() }

func newFakeOverrideStore() *fakeOverrideStore { return testutil.NewMemoryOverrideStore() }

func newFakeDocumentStore() *fakeDocumentStore { return testutil.NewMemoryDocumentStore() }
