package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleSupplier    = Role("supplier")
	RoleWholesaler  = Role("wholesaler")
	RoleTransporter = Role("transporter")
	RoleRetailer    = Role("retailer")
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleSupplier, RoleWholesaler, RoleTransporter, RoleRetailer:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Viewer is the authenticated user looking at a list of orders.
type Viewer struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (v *Viewer) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Role    string `json:"role"`
		Name    string `json:"name"`
		Email   string `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := raw.MongoID
	if id == "" {
		id = raw.ID
	}
	*v = Viewer{
		ID:    id,
		Role:  Role(strings.ToLower(strings.TrimSpace(raw.Role))),
		Name:  raw.Name,
		Email: raw.Email,
	}
	return nil
}
