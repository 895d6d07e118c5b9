package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mytrade/internal/domain"
)

func TestPresent_KnownStatus(t *testing.T) {
	p := Present(domain.StatusInTransit)

	assert.Equal(t, domain.StatusInTransit, p.Status)
	assert.Equal(t, "In transit", p.Label)
	assert.NotEmpty(t, p.Color)
	assert.NotEmpty(t, p.Icon)
}

func TestPresent_UnknownStatus(t *testing.T) {
	p := Present("awaiting_customs")

	assert.Equal(t, "Awaiting customs", p.Label)
	assert.Equal(t, unknownColor, p.Color)
	assert.Equal(t, unknownIcon, p.Icon)

	assert.Equal(t, "Unknown", Present("").Label)
}

func TestAll_CoversEveryKnownStatus(t *testing.T) {
	all := All()

	assert.Len(t, all, len(allStatuses))
	for i := 1; i < len(all); i++ {
		assert.Less(t, string(all[i-1].Status), string(all[i].Status))
	}
	for _, p := range all {
		assert.True(t, p.Status.Known())
	}
}
