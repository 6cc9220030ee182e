package combat

import "github.com/cory-johannsen/gospelrpg/internal/game/character"

// BuildTurnOrder concatenates party then enemies and sorts by descending speed.
// Ties keep their original relative order.
//
// Postcondition: len(result) == len(party)+len(enemies); speeds are non-increasing.
func BuildTurnOrder(party, enemies []*character.Character) []*character.Character {
	order := make([]*character.Character, 0, len(party)+len(enemies))
	order = append(order, party...)
	order = append(order, enemies...)
	sortBySpeedDesc(order)
	return order
}

// sortBySpeedDesc sorts in place, fastest first. Insertion sort only swaps on
// strictly greater speed, which keeps it stable.
func sortBySpeedDesc(cs []*character.Character) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Speed > cs[j-1].Speed; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}
