package policy

import (
	"slices"
	"strings"

	"mytrade/internal/domain"
)

type Presentation struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
	Color  string        `json:"color"`
	Icon   string        `json:"icon"`
}

const (
	unknownColor = "#6B7280"
	unknownIcon  = "help-circle-outline"
)

var presentations = map[domain.Status]Presentation{
	domain.StatusPending:                {Label: "Pending", Color: "#F59E0B", Icon: "time-outline"},
	domain.StatusAccepted:               {Label: "Accepted", Color: "#10B981", Icon: "checkmark-circle-outline"},
	domain.StatusConfirmed:              {Label: "Confirmed", Color: "#10B981", Icon: "checkmark-done-outline"},
	domain.StatusProcessing:             {Label: "Processing", Color: "#3B82F6", Icon: "cog-outline"},
	domain.StatusInProduction:           {Label: "In production", Color: "#6366F1", Icon: "construct-outline"},
	domain.StatusReadyForDelivery:       {Label: "Ready for delivery", Color: "#8B5CF6", Icon: "cube-outline"},
	domain.StatusShipped:                {Label: "Shipped", Color: "#0EA5E9", Icon: "airplane-outline"},
	domain.StatusAssignedToTransporter:  {Label: "Assigned to transporter", Color: "#8B5CF6", Icon: "person-add-outline"},
	domain.StatusAcceptedByTransporter:  {Label: "Accepted by transporter", Color: "#14B8A6", Icon: "thumbs-up-outline"},
	domain.StatusRejectedByTransporter:  {Label: "Rejected by transporter", Color: "#EF4444", Icon: "thumbs-down-outline"},
	domain.StatusInTransit:              {Label: "In transit", Color: "#0EA5E9", Icon: "car-outline"},
	domain.StatusDelivered:              {Label: "Delivered", Color: "#22C55E", Icon: "home-outline"},
	domain.StatusCertified:              {Label: "Certified", Color: "#15803D", Icon: "ribbon-outline"},
	domain.StatusDisputed:               {Label: "Disputed", Color: "#F97316", Icon: "alert-circle-outline"},
	domain.StatusReturnRequested:        {Label: "Return requested", Color: "#F97316", Icon: "return-down-back-outline"},
	domain.StatusReturnToWholesaler:     {Label: "Returning to wholesaler", Color: "#EA580C", Icon: "return-up-back-outline"},
	domain.StatusReturnAccepted:         {Label: "Return accepted", Color: "#10B981", Icon: "checkmark-outline"},
	domain.StatusReturnRejected:         {Label: "Return rejected", Color: "#EF4444", Icon: "close-outline"},
	domain.StatusCancelled:              {Label: "Cancelled", Color: "#EF4444", Icon: "close-circle-outline"},
	domain.StatusCancelledByWholesaler:  {Label: "Cancelled by wholesaler", Color: "#EF4444", Icon: "close-circle-outline"},
	domain.StatusCancelledByTransporter: {Label: "Cancelled by transporter", Color: "#EF4444", Icon: "close-circle-outline"},
	domain.StatusCancelledByRetailer:    {Label: "Cancelled by retailer", Color: "#EF4444", Icon: "close-circle-outline"},
	domain.StatusRejected:               {Label: "Rejected", Color: "#DC2626", Icon: "ban-outline"},
}

func Present(status domain.Status) Presentation {
	status = status.Normalize()
	if p, ok := presentations[status]; ok {
		p.Status = status
		return p
	}
	return Presentation{
		Status: status,
		Label:  humanize(string(status)),
		Color:  unknownColor,
		Icon:   unknownIcon,
	}
}

// All returns the presentation of every known status, sorted by status.
func All() []Presentation {
	out := make([]Presentation, 0, len(presentations))
	for status := range presentations {
		out = append(out, Present(status))
	}
	slices.SortFunc(out, func(a, b Presentation) int {
		return strings.Compare(string(a.Status), string(b.Status))
	})
	return out
}

func humanize(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
