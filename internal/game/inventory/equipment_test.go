package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
)

var (
	staff  = &inventory.Item{ID: "shepherd_staff", Name: "Shepherd's Staff", Slot: inventory.SlotWeapon, AttackBonus: 5, DefenseBonus: 2, FaithBonus: 3}
	sling  = &inventory.Item{ID: "sling", Name: "Sling of David", Slot: inventory.SlotWeapon, AttackBonus: 8, FaithBonus: 5}
	cloak  = &inventory.Item{ID: "rough_cloak", Name: "Rough Cloak", Slot: inventory.SlotBody, DefenseBonus: 4, FaithBonus: 1, HPBonus: 10}
	shawl  = &inventory.Item{ID: "prayer_shawl", Name: "Prayer Shawl", Slot: inventory.SlotAccessory, DefenseBonus: 2, FaithBonus: 5, HPBonus: 5, MPBonus: 8}
	bread  = &inventory.Item{ID: "bread", Name: "Bread of Life", HealAmount: 50}
	sandal = &inventory.Item{ID: "leather_sandals", Name: "Leather Sandals", Slot: inventory.SlotFeet, DefenseBonus: 2}
)

func TestLoadout_EquipReturnsPrevious(t *testing.T) {
	var lo inventory.Loadout
	old, err := lo.Equip(staff)
	require.NoError(t, err)
	assert.Nil(t, old)

	old, err = lo.Equip(sling)
	require.NoError(t, err)
	assert.Same(t, staff, old)
	assert.Same(t, sling, lo.Item(inventory.SlotWeapon))
}

func TestLoadout_EquipRejectsConsumable(t *testing.T) {
	var lo inventory.Loadout
	_, err := lo.Equip(bread)
	assert.ErrorIs(t, err, inventory.ErrNotEquippable)
	assert.Empty(t, lo.Equipped())
}

func TestLoadout_Totals(t *testing.T) {
	var lo inventory.Loadout
	for _, it := range []*inventory.Item{staff, cloak, shawl, sandal} {
		_, err := lo.Equip(it)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, lo.TotalAttack())
	assert.Equal(t, 10, lo.TotalDefense())
	assert.Equal(t, 9, lo.TotalFaith())
	assert.Equal(t, 15, lo.TotalHP())
	assert.Equal(t, 8, lo.TotalMP())
}

func TestLoadout_Unequip(t *testing.T) {
	var lo inventory.Loadout
	_, _ = lo.Equip(cloak)
	assert.Same(t, cloak, lo.Unequip(inventory.SlotBody))
	assert.Nil(t, lo.Unequip(inventory.SlotBody))
	assert.Nil(t, lo.Unequip(inventory.Slot("head")))
	assert.Zero(t, lo.TotalDefense())
}

func TestSlot_DisplayName(t *testing.T) {
	assert.Equal(t, "Accessory", inventory.SlotAccessory.DisplayName())
	assert.Equal(t, "head", inventory.Slot("head").DisplayName())
	assert.False(t, inventory.Slot("head").Valid())
}

// TestLoadout_Property_TotalIsSumOfSlots verifies totals equal the sum over all equipped items.
func TestLoadout_Property_TotalIsSumOfSlots(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var lo inventory.Loadout
		want := 0
		for _, s := range inventory.Slots {
			if !rapid.Bool().Draw(rt, "filled_"+string(s)) {
				continue
			}
			bonus := rapid.IntRange(-5, 20).Draw(rt, "atk_"+string(s))
			_, err := lo.Equip(&inventory.Item{ID: string(s), Name: string(s), Slot: s, AttackBonus: bonus})
			assert.NoError(rt, err)
			want += bonus
		}
		assert.Equal(rt, want, lo.TotalAttack())
	})
}
