package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreKeyExcludesSlots(t *testing.T) {
	target := Target{Name: "The Marksman", Area: "Shoreditch", Platform: PlatformResy, Locator: "marksman-public-house"}
	require.Equal(t, "The Marksman|resy|2026-02-28", StoreKey(target, "2026-02-28"))
	require.Equal(t, "The Marksman (resy)", target.Label())
}

func TestSlotSignatureSortsWithoutMutating(t *testing.T) {
	target := Target{Name: "The Marksman", Platform: PlatformOpenTable}
	slots := []string{"20:00", "19:00"}
	require.Equal(t, "The Marksman|opentable|2026-03-01|19:00,20:00", SlotSignature(target, "2026-03-01", slots))
	require.Equal(t, []string{"20:00", "19:00"}, slots)
}

func TestStatePrevious(t *testing.T) {
	var nilState *State
	require.Nil(t, nilState.Previous("k"))

	s := NewState()
	require.Nil(t, s.Previous("k"))
	s.Found["k"] = []string{"19:00"}
	require.Equal(t, []string{"19:00"}, s.Previous("k"))
}
