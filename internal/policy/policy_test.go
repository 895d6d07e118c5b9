package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

type expectedAction struct {
	name   string
	target domain.Status
	reason bool
}

type expectedRow struct {
	status      domain.Status
	perspective Perspective
	assignments []Assignment
	actions     []expectedAction
}

var allStatuses = []domain.Status{
	domain.StatusPending, domain.StatusAccepted, domain.StatusConfirmed, domain.StatusProcessing,
	domain.StatusInProduction, domain.StatusReadyForDelivery, domain.StatusShipped,
	domain.StatusAssignedToTransporter, domain.StatusAcceptedByTransporter, domain.StatusRejectedByTransporter,
	domain.StatusInTransit, domain.StatusDelivered, domain.StatusCertified, domain.StatusDisputed,
	domain.StatusReturnRequested, domain.StatusReturnToWholesaler, domain.StatusReturnAccepted,
	domain.StatusReturnRejected, domain.StatusCancelled, domain.StatusCancelledByWholesaler,
	domain.StatusCancelledByTransporter, domain.StatusCancelledByRetailer, domain.StatusRejected,
}

var allPerspectives = []Perspective{
	{Role: domain.RoleWholesaler},
	{Role: domain.RoleWholesaler, Outgoing: true},
	{Role: domain.RoleTransporter},
	{Role: domain.RoleSupplier},
	{Role: domain.RoleRetailer},
}

var allAssignments = []Assignment{AssignmentNone, AssignmentFree, AssignmentSpecific, AssignmentOther}

// expectedTable is written out independently of the production table so the
// enumeration test catches accidental edits to either one.
var expectedTable = []expectedRow{
	{domain.StatusPending, wholesaler, nil, []expectedAction{{"accept", domain.StatusAccepted, false}, {"reject", domain.StatusRejected, false}}},
	{domain.StatusAccepted, wholesaler, nil, []expectedAction{{"process", domain.StatusProcessing, false}, {"cancel", domain.StatusCancelledByWholesaler, true}}},
	{domain.StatusProcessing, wholesaler, nil, []expectedAction{{"assign", domain.StatusAssignedToTransporter, false}}},
	{domain.StatusAssignedToTransporter, transporter, specificOrFree, []expectedAction{{"accept", domain.StatusAcceptedByTransporter, false}, {"reject", domain.StatusRejectedByTransporter, true}}},
	{domain.StatusAcceptedByTransporter, transporter, specificOrFree, []expectedAction{{"start", domain.StatusInTransit, false}, {"cancel", domain.StatusCancelledByTransporter, true}}},
	{domain.StatusInTransit, transporter, specificOrFree, []expectedAction{{"deliver", domain.StatusDelivered, false}, {"cancel", domain.StatusCancelledByTransporter, true}}},
	{domain.StatusDisputed, transporter, specificOnly, []expectedAction{{"return", domain.StatusReturnToWholesaler, true}}},
	{domain.StatusReturnToWholesaler, wholesaler, nil, []expectedAction{{"accept", domain.StatusReturnAccepted, false}, {"reject", domain.StatusReturnRejected, true}}},
	{domain.StatusDelivered, wholesaler, nil, []expectedAction{{"certify", domain.StatusCertified, false}, {"return", domain.StatusReturnRequested, true}}},
	{domain.StatusPending, wholesalerOutgoing, nil, []expectedAction{{"cancel", domain.StatusCancelled, true}, {"delete", "", false}}},
	{domain.StatusConfirmed, wholesalerOutgoing, nil, []expectedAction{{"cancel", domain.StatusCancelled, true}}},
	{domain.StatusPending, supplier, nil, []expectedAction{{"confirm", domain.StatusConfirmed, false}, {"reject", domain.StatusRejected, true}}},
	{domain.StatusConfirmed, supplier, nil, []expectedAction{{"start_production", domain.StatusInProduction, false}}},
	{domain.StatusInProduction, supplier, nil, []expectedAction{{"mark_ready", domain.StatusReadyForDelivery, false}}},
	{domain.StatusReadyForDelivery, supplier, nil, []expectedAction{{"ship", domain.StatusShipped, false}}},
	{domain.StatusShipped, supplier, nil, []expectedAction{{"deliver", domain.StatusDelivered, false}}},
}

func expectedFor(status domain.Status, p Perspective, a Assignment) []expectedAction {
	if a == AssignmentOther {
		return nil
	}
	for _, row := range expectedTable {
		if row.status != status || row.perspective != p {
			continue
		}
		if row.assignments == nil {
			return row.actions
		}
		for _, allowed := range row.assignments {
			if allowed == a {
				return row.actions
			}
		}
		return nil
	}
	return nil
}

func TestActions_ExhaustiveTable(t *testing.T) {
	for _, status := range allStatuses {
		for _, p := range allPerspectives {
			for _, a := range allAssignments {
				name := fmt.Sprintf("%s/%s/outgoing=%t/%s", status, p.Role, p.Outgoing, a)
				t.Run(name, func(t *testing.T) {
					got := Actions(status, p, a)
					want := expectedFor(status, p, a)

					require.Len(t, got, len(want))
					for i, w := range want {
						assert.Equal(t, w.name, got[i].Name)
						assert.Equal(t, w.target, got[i].Target)
						assert.Equal(t, w.reason, got[i].ReasonRequired)
					}
				})
			}
		}
	}
}

func TestActions_UnknownOrMalformedStatus(t *testing.T) {
	for _, status := range []domain.Status{"", "   ", "teleported", "PENDING_CONFIRMATION", "cancelled_by_*"} {
		for _, p := range allPerspectives {
			for _, a := range allAssignments {
				assert.NotPanics(t, func() {
					assert.Empty(t, Actions(status, p, a))
				})
			}
		}
	}
}

func TestActions_NormalizesStatus(t *testing.T) {
	got := Actions(" DELIVERED ", wholesaler, AssignmentNone)
	require.Len(t, got, 2)
	assert.Equal(t, "certify", got[0].Name)
}

func TestActions_RetailerIsReadOnly(t *testing.T) {
	for _, status := range allStatuses {
		assert.Empty(t, Actions(status, Perspective{Role: domain.RoleRetailer}, AssignmentNone))
	}
}

func TestActions_OtherAssignmentNeverOffersActions(t *testing.T) {
	for _, status := range allStatuses {
		for _, p := range allPerspectives {
			name := fmt.Sprintf("%s/%s/outgoing=%t", status, p.Role, p.Outgoing)
			assert.Empty(t, Actions(status, p, AssignmentOther), name)
		}
	}
	assert.Empty(t, Actions(domain.StatusPending, wholesaler, AssignmentOther))
	assert.Empty(t, Actions(domain.StatusPending, supplier, AssignmentOther))
}

func TestActions_ReturnsCallerOwnedSlice(t *testing.T) {
	first := Actions(domain.StatusPending, wholesaler, AssignmentNone)
	first[0].Name = "mutated"

	second := Actions(domain.StatusPending, wholesaler, AssignmentNone)
	assert.Equal(t, "accept", second[0].Name)
}

func TestActions_DestructiveActionsComeLast(t *testing.T) {
	for _, status := range allStatuses {
		for _, p := range allPerspectives {
			actions := Actions(status, p, AssignmentSpecific)
			seenDestructive := false
			for _, a := range actions {
				if seenDestructive {
					assert.True(t, a.Destructive, "non-destructive %q after a destructive action for %s", a.Name, status)
				}
				seenDestructive = seenDestructive || a.Destructive
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		ref      *domain.PartyRef
		viewerID string
		want     Assignment
	}{
		{name: "nil reference is free", ref: nil, viewerID: "A", want: AssignmentFree},
		{name: "blank reference is free", ref: &domain.PartyRef{ID: " "}, viewerID: "A", want: AssignmentFree},
		{name: "own reference is specific", ref: &domain.PartyRef{ID: "A"}, viewerID: "A", want: AssignmentSpecific},
		{name: "foreign reference is other", ref: &domain.PartyRef{ID: "B"}, viewerID: "A", want: AssignmentOther},
		{name: "missing viewer id is other", ref: &domain.PartyRef{ID: "B"}, viewerID: "", want: AssignmentOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ref, tt.viewerID))
		})
	}
}

func TestForOrder_FreeOrderForTransporter(t *testing.T) {
	order := domain.Order{ID: "o-1", Status: domain.StatusAssignedToTransporter}
	viewer := domain.Viewer{ID: "A", Role: domain.RoleTransporter}

	got := ForOrder(order, transporter, viewer)

	require.Len(t, got, 2)
	assert.Equal(t, "accept", got[0].Name)
	assert.Equal(t, domain.StatusAcceptedByTransporter, got[0].Target)
	assert.Equal(t, "reject", got[1].Name)
	assert.Equal(t, domain.StatusRejectedByTransporter, got[1].Target)
}

func TestForOrder_OrderOfAnotherTransporter(t *testing.T) {
	order := domain.Order{ID: "o-1", Status: domain.StatusAssignedToTransporter, Transporter: &domain.PartyRef{ID: "B"}}
	viewer := domain.Viewer{ID: "A", Role: domain.RoleTransporter}

	assert.Empty(t, ForOrder(order, transporter, viewer))
}

func TestForOrder_DeliveredForWholesaler(t *testing.T) {
	order := domain.Order{ID: "o-2", Status: domain.StatusDelivered}
	viewer := domain.Viewer{ID: "W", Role: domain.RoleWholesaler}

	got := ForOrder(order, wholesaler, viewer)

	require.Len(t, got, 2)
	assert.Equal(t, "certify", got[0].Name)
	assert.Equal(t, domain.StatusCertified, got[0].Target)
	assert.False(t, got[0].ReasonRequired)
	assert.Equal(t, "return", got[1].Name)
	assert.Equal(t, domain.StatusReturnRequested, got[1].Target)
	assert.True(t, got[1].ReasonRequired)
}

func TestForOrder_DisputedOnlyForOwningTransporter(t *testing.T) {
	viewer := domain.Viewer{ID: "A", Role: domain.RoleTransporter}

	owned := domain.Order{Status: domain.StatusDisputed, Transporter: &domain.PartyRef{ID: "A"}}
	free := domain.Order{Status: domain.StatusDisputed}

	assert.Len(t, ForOrder(owned, transporter, viewer), 1)
	assert.Empty(t, ForOrder(free, transporter, viewer))
}

func TestForOrder_MissingInputFailsSafe(t *testing.T) {
	assert.Empty(t, ForOrder(domain.Order{Status: domain.StatusPending}, wholesaler, domain.Viewer{}))
	assert.Empty(t, ForOrder(domain.Order{}, wholesaler, domain.Viewer{ID: "W"}))
}

func TestFind(t *testing.T) {
	actions := Actions(domain.StatusInTransit, transporter, AssignmentFree)

	a, ok := Find(actions, " Deliver ")
	require.True(t, ok)
	assert.Equal(t, domain.StatusDelivered, a.Target)

	_, ok = Find(actions, "certify")
	assert.False(t, ok)
}

func TestValidateReason(t *testing.T) {
	reasonRequired := Actions(domain.StatusDelivered, wholesaler, AssignmentNone)[1]
	noReason := Actions(domain.StatusDelivered, wholesaler, AssignmentNone)[0]

	for _, blank := range []string{"", " ", "\t\n"} {
		err := ValidateReason(reasonRequired, blank)
		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok)
		require.Len(t, ve.Details, 1)
		assert.Equal(t, "reason", ve.Details[0].Field)
	}

	assert.NoError(t, ValidateReason(reasonRequired, "damaged on arrival"))
	assert.NoError(t, ValidateReason(noReason, ""))
}

func TestEveryReasonRequiredActionIsValidated(t *testing.T) {
	for _, status := range allStatuses {
		for _, p := range allPerspectives {
			for _, a := range Actions(status, p, AssignmentSpecific) {
				if a.ReasonRequired {
					assert.Error(t, ValidateReason(a, "  "), "%s/%s", status, a.Name)
				}
			}
		}
	}
}
