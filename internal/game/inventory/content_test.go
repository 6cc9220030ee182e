// Package inventory_test contains content completeness tests for the shipped
// item library.
package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
)

// TestContent_ItemsLoad verifies every shipped item YAML loads and validates.
func TestContent_ItemsLoad(t *testing.T) {
	reg, err := inventory.LoadRegistry("../../../content/items")
	require.NoError(t, err, "content/items should load without error")
	require.NotEmpty(t, reg.IDs())
}

// TestContent_EverySlotHasEquipment verifies each slot has at least one item.
func TestContent_EverySlotHasEquipment(t *testing.T) {
	items, err := inventory.LoadItems("../../../content/items")
	require.NoError(t, err)

	seen := make(map[inventory.Slot]int)
	for _, it := range items {
		if it.Equippable() {
			seen[it.Slot]++
		}
	}
	for _, s := range inventory.Slots {
		assert.Positive(t, seen[s], "slot %q has no equipment", s)
	}
}

// TestContent_ConsumablesHeal verifies every slotless item is a usable consumable.
func TestContent_ConsumablesHeal(t *testing.T) {
	items, err := inventory.LoadItems("../../../content/items")
	require.NoError(t, err)
	for _, it := range items {
		if !it.Equippable() {
			assert.True(t, it.Consumable(), "item %q has neither slot nor heal amount", it.ID)
		}
	}
}
