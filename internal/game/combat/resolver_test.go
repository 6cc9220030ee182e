package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
)

func resolver(src dice.Source, ledger combat.BonusLedger) combat.Resolver {
	return combat.Resolver{Ledger: ledger, Source: src, VarianceMinBP: 8500, VarianceMaxBP: 11500}
}

func TestResolver_Damage_VarianceBounds(t *testing.T) {
	attacker := hero("peter", 5)
	defender := foe("demon", 5)

	low := resolver(dice.NewFixedSource(0), nil).Damage(attacker, defender, 30)
	assert.Equal(t, 42, low.Base)
	assert.Equal(t, 20, low.Defense)
	assert.Equal(t, 8500, low.VarianceBP)
	assert.Equal(t, 27, low.Amount)

	mid := resolver(dice.NewFixedSource(1500), nil).Damage(attacker, defender, 30)
	assert.Equal(t, 32, mid.Amount)

	high := resolver(dice.NewFixedSource(3000), nil).Damage(attacker, defender, 30)
	assert.Equal(t, 11500, high.VarianceBP)
	assert.Equal(t, 36, high.Amount)
}

func TestProperty_Damage_WithinVarianceRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		got := resolver(src, nil).Damage(hero("peter", 5), foe("demon", 5), 30).Amount
		if got < 27 || got > 36 {
			rt.Fatalf("damage %d outside [27, 36]", got)
		}
	})
}

func TestProperty_Damage_AtLeastOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		attacker := hero("a", 1)
		attacker.Attack = rapid.IntRange(0, 200).Draw(rt, "attack")
		defender := foe("d", 1)
		defender.Defense = rapid.IntRange(0, 1000).Draw(rt, "defense")
		power := rapid.IntRange(0, 200).Draw(rt, "power")
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		if got := resolver(src, nil).Damage(attacker, defender, power).Amount; got < 1 {
			rt.Fatalf("damage %d < 1", got)
		}
	})
}

func TestResolver_Damage_OverwhelmingDefenseFloorsAtOne(t *testing.T) {
	d := foe("wall", 1)
	d.Defense = 500
	got := resolver(dice.NewFixedSource(3000), nil).Damage(hero("a", 1), d, 1)
	assert.Equal(t, 1, got.Amount)
}

func TestResolver_Damage_ReadsEquipmentLive(t *testing.T) {
	ledger := inventory.NewLedger()
	attacker := hero("peter", 5)
	defender := foe("demon", 5)
	r := resolver(dice.NewFixedSource(1500), ledger)

	assert.Equal(t, 32, r.Damage(attacker, defender, 30).Amount)

	sword := &inventory.Item{ID: "sword_of_spirit", Name: "Sword of the Spirit", Slot: inventory.SlotWeapon, AttackBonus: 10}
	_, err := ledger.Equip(sword, attacker.ID)
	require.NoError(t, err)
	// base = 30 + floor(35/2) = 47; 47 - 10 = 37
	assert.Equal(t, 37, r.Damage(attacker, defender, 30).Amount)

	shield := &inventory.Item{ID: "shield_of_faith", Name: "Shield of Faith", Slot: inventory.SlotBody, DefenseBonus: 10}
	_, err = ledger.Equip(shield, defender.ID)
	require.NoError(t, err)
	// defense = (20 + 10) * 0.5 = 15
	assert.Equal(t, 32, r.Damage(attacker, defender, 30).Amount)

	ledger.Unequip(attacker.ID, inventory.SlotWeapon)
	assert.Equal(t, 27, r.Damage(attacker, defender, 30).Amount)
}

func TestHealAndAbilityPower(t *testing.T) {
	c := hero("john", 1)
	c.Faith = 11
	assert.Equal(t, 25, combat.HealAmount(c, character.Ability{Power: 20, Heals: true}))
	assert.Equal(t, 33, combat.AbilityPower(c, character.Ability{Power: 30}))
}
