package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
)

var (
	rebuke  = character.Ability{ID: "rebuke", Name: "Rebuke", Power: 30, MPCost: 5}
	castOut = character.Ability{ID: "cast_out", Name: "Cast Out", Power: 50, MPCost: 10}
	word    = character.Ability{ID: "word_of_god", Name: "Word of God", Power: 60, MPCost: 15, TargetsAll: true}
	hands   = character.Ability{ID: "laying_hands", Name: "Laying on Hands", Power: 50, MPCost: 6, Heals: true}
	prayer  = character.Ability{ID: "prayer_faith", Name: "Prayer of Faith", Power: 40, MPCost: 8, Heals: true, TargetsAll: true}
)

func member(id string, hp, maxHP, mp int, abilities ...character.Ability) *character.Character {
	return &character.Character{ID: id, Name: id, Class: character.ClassAlly, HP: hp, MaxHP: maxHP, MP: mp, MaxMP: 100, Abilities: abilities}
}

func foe(id string, hp, maxHP int) *character.Character {
	return &character.Character{ID: id, Name: id, Class: character.ClassHostile, HP: hp, MaxHP: maxHP}
}

func snap(current string, party, enemies []*character.Character) combat.Snapshot {
	return combat.Snapshot{CurrentID: current, PlayerTurn: true, Party: party, Enemies: enemies}
}

func TestChoose_StrongestAffordableVsWeakestEnemy(t *testing.T) {
	jesus := member("jesus", 200, 200, 12, character.BasicStrike, rebuke, castOut, word)
	got := choose(snap("jesus", []*character.Character{jesus},
		[]*character.Character{foe("a", 50, 100), foe("b", 20, 100), foe("c", 0, 100)}))
	assert.Equal(t, move{kind: moveAbility, abilityID: "cast_out", targetID: "b"}, got)
}

func TestChoose_PrefersAreaAttackAgainstSeveralFoes(t *testing.T) {
	jesus := member("jesus", 200, 200, 100, rebuke, castOut, word)
	got := choose(snap("jesus", []*character.Character{jesus},
		[]*character.Character{foe("a", 50, 100), foe("b", 60, 100)}))
	assert.Equal(t, "word_of_god", got.abilityID)
}

func TestChoose_FallsBackToAttackWithoutMP(t *testing.T) {
	simon := member("simon", 120, 120, 0, character.BasicStrike, rebuke)
	got := choose(snap("simon", []*character.Character{simon}, []*character.Character{foe("a", 10, 100)}))
	assert.Equal(t, move{kind: moveAttack, targetID: "a"}, got)
}

func TestChoose_HealsWoundedAlly(t *testing.T) {
	jesus := member("jesus", 200, 200, 100, rebuke, hands, prayer)
	simon := member("simon", 20, 120, 0)
	got := choose(snap("jesus", []*character.Character{jesus, simon}, []*character.Character{foe("a", 10, 100)}))
	assert.Equal(t, move{kind: moveAbility, abilityID: "laying_hands", targetID: "simon"}, got)
}

func TestChoose_HealsEveryoneWhenSeveralAreWounded(t *testing.T) {
	jesus := member("jesus", 40, 200, 100, rebuke, hands, prayer)
	simon := member("simon", 20, 120, 0)
	got := choose(snap("jesus", []*character.Character{jesus, simon}, []*character.Character{foe("a", 10, 100)}))
	assert.Equal(t, "prayer_faith", got.abilityID)
}

func TestChoose_IgnoresDeadAllies(t *testing.T) {
	jesus := member("jesus", 200, 200, 100, castOut, hands)
	simon := member("simon", 0, 120, 0)
	got := choose(snap("jesus", []*character.Character{jesus, simon}, []*character.Character{foe("a", 10, 100)}))
	assert.Equal(t, "cast_out", got.abilityID)
}

func TestChoose_UnknownActorDefends(t *testing.T) {
	got := choose(snap("ghost", nil, []*character.Character{foe("a", 10, 100)}))
	assert.Equal(t, moveDefend, got.kind)
}
