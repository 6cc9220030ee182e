package combat

import (
	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
)

// BonusLedger supplies live equipment bonuses by character ID.
// *inventory.Ledger satisfies it.
type BonusLedger interface {
	TotalAttack(characterID string) int
	TotalDefense(characterID string) int
}

// DamageResult holds the full breakdown of one damage calculation.
type DamageResult struct {
	AttackerID string
	DefenderID string
	// Base is power + floor((attack + equipment attack) / 2).
	Base int
	// Defense is defender defense + equipment defense, before halving.
	Defense int
	// VarianceBP is the drawn variance in basis points.
	VarianceBP int
	// Amount is the damage dealt; always >= 1.
	Amount int
}

// Resolver computes damage and healing amounts.
type Resolver struct {
	// Ledger may be nil, meaning no equipment bonuses.
	Ledger        BonusLedger
	Source        dice.Source
	VarianceMinBP int
	VarianceMaxBP int
}

// Damage computes the damage attacker deals defender with the given power:
//
//	base     = power + floor((attack + atkBonus) / 2)
//	defense  = (defense + defBonus) * 0.5
//	damage   = max(1, floor((base - defense) * variance))
//
// Variance is a fresh draw in [VarianceMinBP, VarianceMaxBP] per call.
//
// Precondition: attacker, defender and r.Source must be non-nil.
// Postcondition: result.Amount >= 1.
func (r Resolver) Damage(attacker, defender *character.Character, power int) DamageResult {
	atkBonus, defBonus := 0, 0
	if r.Ledger != nil {
		atkBonus = r.Ledger.TotalAttack(attacker.ID)
		defBonus = r.Ledger.TotalDefense(defender.ID)
	}
	base := power + floorDiv(attacker.Attack+atkBonus, 2)
	def := defender.Defense + defBonus
	bp := dice.Between(r.Source, r.VarianceMinBP, r.VarianceMaxBP)

	// (base - def/2) * bp/10000 == (2*base - def) * bp / 20000, kept in integers.
	amount := floorDiv((2*base-def)*bp, 20000)
	if amount < 1 {
		amount = 1
	}
	return DamageResult{
		AttackerID: attacker.ID,
		DefenderID: defender.ID,
		Base:       base,
		Defense:    def,
		VarianceBP: bp,
		Amount:     amount,
	}
}

// HealAmount returns power + floor(faith / 2) for a healing ability.
func HealAmount(source *character.Character, a character.Ability) int {
	return a.Power + floorDiv(source.Faith, 2)
}

// AbilityPower returns power + floor(faith / 3) for a damaging ability.
func AbilityPower(source *character.Character, a character.Ability) int {
	return a.Power + floorDiv(source.Faith, 3)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
