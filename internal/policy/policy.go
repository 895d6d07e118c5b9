// Package policy decides which order actions a viewer is offered for an
// order's current status and which status each action asks the backend for.
// Everything here is a pure lookup: no I/O, no panics, unknown input yields
// no actions.
package policy

import (
	"slices"
	"strings"

	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

type Assignment string

const (
	// AssignmentNone is used for perspectives that are not gated by the
	// transporter reference.
	AssignmentNone     = Assignment("none")
	AssignmentFree     = Assignment("free")
	AssignmentSpecific = Assignment("specific")
	AssignmentOther    = Assignment("other")
)

type ActionKind string

const (
	KindUpdate = ActionKind("update")
	KindAssign = ActionKind("assign")
	KindDelete = ActionKind("delete")
)

type Action struct {
	Name           string        `json:"name"`
	Label          string        `json:"label"`
	Color          string        `json:"color"`
	Target         domain.Status `json:"target,omitempty"`
	Kind           ActionKind    `json:"kind"`
	ReasonRequired bool          `json:"reasonRequired"`
	Destructive    bool          `json:"destructive"`
}

// Perspective is the role a viewer looks at an order from. Wholesalers see
// their own purchase orders to suppliers as Outgoing.
type Perspective struct {
	Role     domain.Role
	Outgoing bool
}

type rule struct {
	statuses    []domain.Status
	perspective Perspective
	// nil means the rule does not look at the assignment.
	assignments []Assignment
	actions     []Action
}

const (
	colorAffirmative = "#16A34A"
	colorProgress    = "#2563EB"
	colorDestructive = "#DC2626"
	colorWarning     = "#D97706"
)

var (
	wholesaler         = Perspective{Role: domain.RoleWholesaler}
	wholesalerOutgoing = Perspective{Role: domain.RoleWholesaler, Outgoing: true}
	transporter        = Perspective{Role: domain.RoleTransporter}
	supplier           = Perspective{Role: domain.RoleSupplier}

	specificOrFree = []Assignment{AssignmentSpecific, AssignmentFree}
	specificOnly   = []Assignment{AssignmentSpecific}
)

func update(name, label, color string, target domain.Status) Action {
	return Action{Name: name, Label: label, Color: color, Target: target, Kind: KindUpdate}
}

func destructive(name, label string, target domain.Status) Action {
	return Action{
		Name:           name,
		Label:          label,
		Color:          colorDestructive,
		Target:         target,
		Kind:           KindUpdate,
		ReasonRequired: true,
		Destructive:    true,
	}
}

// table rows are matched top to bottom; actions inside a row are already in
// display order, affirmative first and destructive last.
var table = []rule{
	{
		statuses:    []domain.Status{domain.StatusPending},
		perspective: wholesaler,
		actions: []Action{
			update("accept", "Accept", colorAffirmative, domain.StatusAccepted),
			{Name: "reject", Label: "Reject", Color: colorDestructive, Target: domain.StatusRejected, Kind: KindUpdate, Destructive: true},
		},
	},
	{
		statuses:    []domain.Status{domain.StatusAccepted},
		perspective: wholesaler,
		actions: []Action{
			update("process", "Start processing", colorProgress, domain.StatusProcessing),
			destructive("cancel", "Cancel", domain.StatusCancelledByWholesaler),
		},
	},
	{
		statuses:    []domain.Status{domain.StatusProcessing},
		perspective: wholesaler,
		actions: []Action{
			{Name: "assign", Label: "Assign transporter", Color: colorProgress, Target: domain.StatusAssignedToTransporter, Kind: KindAssign},
		},
	},
	{
		statuses:    []domain.Status{domain.StatusAssignedToTransporter},
		perspective: transporter,
		assignments: specificOrFree,
		actions: []Action{
			update("accept", "Accept delivery", colorAffirmative, domain.StatusAcceptedByTransporter),
			destructive("reject", "Reject", domain.StatusRejectedByTransporter),
		},
	},
	{
		statuses:    []domain.Status{domain.StatusAcceptedByTransporter},
		perspective: transporter,
		assignments: specificOrFree,
		actions: []Action{
			update("start", "Start delivery", colorProgress, domain.StatusInTransit),
			destructive("cancel", "Cancel", domain.StatusCancelledByTransporter),
		},
	},
	{
		statuses:    []domain.Status{domain.StatusInTransit},
		perspective: transporter,
		assignments: specificOrFree,
		actions: []Action{
			update("deliver", "Mark delivered", colorAffirmative, domain.StatusDelivered),
			destructive("cancel", "Cancel", domain.StatusCancelledByTransporter),
		},
	},
	{
		statuses:    []domain.Status{domain.StatusDisputed},
		perspective: transporter,
		assignments: specificOnly,
		actions: []Action{
			{Name: "return", Label: "Return to wholesaler", Color: colorWarning, Target: domain.StatusReturnToWholesaler, Kind: KindUpdate, ReasonRequired: true},
		},
	},
	{
		statuses:    []domain.Status{domain.StatusReturnToWholesaler},
		perspective: wholesaler,
		actions: []Action{
			update("accept", "Accept return", colorAffirmative, domain.StatusReturnAccepted),
			destructive("reject", "Reject return", domain.StatusReturnRejected),
		},
	},
	{
		statuses:    []domain.Status{domain.StatusDelivered},
		perspective: wholesaler,
		actions: []Action{
			update("certify", "Certify", colorAffirmative, domain.StatusCertified),
			{Name: "return", Label: "Request return", Color: colorWarning, Target: domain.StatusReturnRequested, Kind: KindUpdate, ReasonRequired: true, Destructive: true},
		},
	},
	{
		statuses:    []domain.Status{domain.StatusPending},
		perspective: wholesalerOutgoing,
		actions: []Action{
			destructive("cancel", "Cancel order", domain.StatusCancelled),
			{Name: "delete", Label: "Delete", Color: colorDestructive, Kind: KindDelete, Destructive: true},
		},
	},
	{
		statuses:    []domain.Status{domain.StatusConfirmed},
		perspective: wholesalerOutgoing,
		actions: []Action{
			destructive("cancel", "Cancel order", domain.StatusCancelled),
		},
	},
	{
		statuses:    []domain.Status{domain.StatusPending},
		perspective: supplier,
		actions: []Action{
			update("confirm", "Confirm", colorAffirmative, domain.StatusConfirmed),
			destructive("reject", "Reject", domain.StatusRejected),
		},
	},
	{
		statuses:    []domain.Status{domain.StatusConfirmed},
		perspective: supplier,
		actions:     []Action{update("start_production", "Start production", colorProgress, domain.StatusInProduction)},
	},
	{
		statuses:    []domain.Status{domain.StatusInProduction},
		perspective: supplier,
		actions:     []Action{update("mark_ready", "Ready for delivery", colorProgress, domain.StatusReadyForDelivery)},
	},
	{
		statuses:    []domain.Status{domain.StatusReadyForDelivery},
		perspective: supplier,
		actions:     []Action{update("ship", "Mark shipped", colorProgress, domain.StatusShipped)},
	},
	{
		statuses:    []domain.Status{domain.StatusShipped},
		perspective: supplier,
		actions:     []Action{update("deliver", "Mark delivered", colorAffirmative, domain.StatusDelivered)},
	},
}

// Classify reports how the order's transporter reference relates to the
// viewer. A missing viewer id can never own an order.
func Classify(ref *domain.PartyRef, viewerID string) Assignment {
	if ref.Empty() {
		return AssignmentFree
	}
	viewerID = strings.TrimSpace(viewerID)
	if viewerID != "" && strings.TrimSpace(ref.ID) == viewerID {
		return AssignmentSpecific
	}
	return AssignmentOther
}

// Actions returns the permitted actions in display order. The returned slice
// is owned by the caller.
func Actions(status domain.Status, perspective Perspective, assignment Assignment) []Action {
	status = status.Normalize()
	if status == "" || !status.Known() {
		return nil
	}
	// An order assigned to someone else is never actionable, whoever looks at it.
	if assignment == AssignmentOther {
		return nil
	}

	for _, r := range table {
		if r.perspective != perspective || !slices.Contains(r.statuses, status) {
			continue
		}
		if r.assignments != nil && !slices.Contains(r.assignments, assignment) {
			return nil
		}
		out := make([]Action, len(r.actions))
		copy(out, r.actions)
		return out
	}
	return nil
}

// ForOrder classifies the order for the viewer and looks up its actions.
func ForOrder(order domain.Order, perspective Perspective, viewer domain.Viewer) []Action {
	if strings.TrimSpace(viewer.ID) == "" || strings.TrimSpace(string(order.Status)) == "" {
		return nil
	}

	assignment := AssignmentNone
	if perspective.Role == domain.RoleTransporter {
		assignment = Classify(order.Transporter, viewer.ID)
	}
	return Actions(order.Status, perspective, assignment)
}

func Find(actions []Action, name string) (Action, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, a := range actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// ValidateReason rejects blank reasons for actions that need one. It runs
// before anything is sent to the backend.
func ValidateReason(action Action, reason string) error {
	if !action.ReasonRequired || strings.TrimSpace(reason) != "" {
		return nil
	}
	return apperrors.NewValidationError("reason is required", apperrors.ValidationDetail{
		Field:   "reason",
		Message: "a reason is required to " + action.Name + " this order",
	})
}
