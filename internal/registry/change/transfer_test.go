package change

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
)

func soleGroup(groupID int, owner string) *models.OwnerGroup {
	return &models.OwnerGroup{
		GroupID: groupID, Tenancy: models.TenancySole, Status: models.GroupActive,
		Owners: []models.Party{{BusinessName: owner}},
	}
}

func chainWithOwners() *models.Registration {
	return &models.Registration{
		ID: 1, MhrNumber: "000042", Status: models.StatusActive,
		OwnerGroups: []*models.OwnerGroup{soleGroup(1, "First Owner Ltd")},
	}
}

func TestApplyTransferReconciliation(t *testing.T) {
	current := chainWithOwners()
	newReg := &models.Registration{ID: 2, MhrNumber: "000042",
		Document: &models.Document{DocumentID: "09000028", DocumentType: models.DocTran}}

	req := registry.TransferRequest{
		DocumentType:      models.DocTran,
		DeleteOwnerGroups: []registry.GroupRef{{GroupID: 1}},
		AddOwnerGroups:    []*models.OwnerGroup{soleGroup(2, "Second Owner Ltd")},
	}

	ApplyTransfer(current, req, newReg)

	// Group 1 is PREVIOUS stamped with the causing registration; group 2 ACTIVE.
	var prev *models.OwnerGroup
	for _, g := range current.OwnerGroups {
		if g.GroupID == 1 {
			prev = g
		}
	}
	require.NotNil(t, prev)
	assert.Equal(t, models.GroupPrevious, prev.Status)
	assert.EqualValues(t, 2, prev.ChangeRegistrationID)

	active := current.ActiveOwnerGroups()
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].GroupID)
	assert.EqualValues(t, 2, active[0].RegistrationID)

	require.Len(t, newReg.AddOwnerGroups, 1)
	assert.Equal(t, 2, newReg.AddOwnerGroups[0].GroupID)
}

func TestApplyTransferResponseSuppressesCarriedGroups(t *testing.T) {
	current := chainWithOwners()
	newReg := &models.Registration{ID: 2, MhrNumber: "000042",
		RegistrationType: models.RegTypeTransfer,
		Document:         &models.Document{DocumentID: "09000028", DocumentType: models.DocTran}}

	carried := soleGroup(3, "Carried Forward Ltd")
	carried.Existing = true
	req := registry.TransferRequest{
		DocumentType:   models.DocTran,
		AddOwnerGroups: []*models.OwnerGroup{soleGroup(2, "Second Owner Ltd"), carried},
	}
	ApplyTransfer(current, req, newReg)

	// Both groups are reconciled onto the chain, but only the genuinely new
	// one appears in the response and report payload.
	require.Len(t, current.ActiveOwnerGroups(), 3)
	require.Len(t, newReg.AddOwnerGroups, 1)
	assert.Equal(t, 2, newReg.AddOwnerGroups[0].GroupID)

	payload, err := json.Marshal(newReg)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"addOwnerGroups"`)
	assert.Contains(t, string(payload), "Second Owner Ltd")
	assert.NotContains(t, string(payload), "Carried Forward Ltd")
}

func TestReconcileOwnerGroupsIdempotent(t *testing.T) {
	current := chainWithOwners()
	deletes := []registry.GroupRef{{GroupID: 1}}
	adds := []*models.OwnerGroup{soleGroup(2, "Second Owner Ltd")}

	first := ReconcileOwnerGroups(current, deletes, adds, 2)
	second := ReconcileOwnerGroups(current, deletes, adds, 2)

	assert.Equal(t, len(first), len(second))
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].GroupID)

	// No duplicate group IDs were introduced.
	seen := map[int]int{}
	for _, g := range current.OwnerGroups {
		if g.Status == models.GroupActive {
			seen[g.GroupID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "group %d duplicated", id)
	}
}

func TestReconcileAssignsSequentialGroupIDs(t *testing.T) {
	current := chainWithOwners()
	adds := []*models.OwnerGroup{
		{Tenancy: models.TenancyJoint, Owners: []models.Party{{BusinessName: "A"}, {BusinessName: "B"}}},
	}
	active := ReconcileOwnerGroups(current, nil, adds, 2)
	require.Len(t, active, 2)
	assert.Equal(t, 2, adds[0].GroupID, "next sequence after existing group 1")
}

func TestReportAddedGroupsSuppressesExisting(t *testing.T) {
	groups := []*models.OwnerGroup{
		{GroupID: 1, RegistrationID: 1, Status: models.GroupActive},
		{GroupID: 2, RegistrationID: 2, Status: models.GroupActive},
		{GroupID: 3, RegistrationID: 2, Status: models.GroupActive, Existing: true},
	}
	added := ReportAddedGroups(groups, 2)
	require.Len(t, added, 1)
	assert.Equal(t, 2, added[0].GroupID)
}
