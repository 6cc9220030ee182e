// Package character defines the combat entity model: characters, their
// classes and the abilities they can use in battle.
package character

// Class is the closed set of combat roles a character can take.
type Class string

const (
	// ClassProtagonist is the designated lead character of the party.
	ClassProtagonist Class = "protagonist"
	// ClassAlly is a recruited party member.
	ClassAlly Class = "ally"
	// ClassHostile is an opposing spirit or creature.
	ClassHostile Class = "hostile"
	// ClassObstacle is an opposing non-creature obstacle (grief, doubt, a storm).
	ClassObstacle Class = "obstacle"
)

// validClasses is the set of valid Class values.
var validClasses = map[Class]bool{
	ClassProtagonist: true,
	ClassAlly:        true,
	ClassHostile:     true,
	ClassObstacle:    true,
}

// Valid reports whether c is one of the four defined classes.
func (c Class) Valid() bool { return validClasses[c] }

// HumanControlled reports whether characters of this class take turns from
// player input rather than the enemy AI.
//
// Postcondition: true iff c is ClassProtagonist or ClassAlly.
func (c Class) HumanControlled() bool {
	return c == ClassProtagonist || c == ClassAlly
}

// Character is a mutable combat entity.
//
// Invariant: 0 <= HP <= MaxHP and 0 <= MP <= MaxMP at all times.
// MaxHP and MaxMP never change once the character is built.
type Character struct {
	ID    string
	Name  string
	Title string
	Class Class
	Level int

	HP    int
	MaxHP int
	MP    int
	MaxMP int

	Attack  int
	Defense int
	Speed   int
	// Faith scales healing output and ability damage.
	Faith int

	Abilities []Ability
}

// IsAlive reports whether the character has any HP left.
//
// Postcondition: Returns true iff HP > 0.
func (c *Character) IsAlive() bool { return c.HP > 0 }

// TakeDamage reduces HP by amount, flooring at zero. Negative amounts are ignored.
//
// Postcondition: 0 <= HP <= MaxHP.
func (c *Character) TakeDamage(amount int) {
	if amount < 0 {
		return
	}
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

// Heal increases HP by amount, capping at MaxHP. Negative amounts are ignored.
//
// Postcondition: 0 <= HP <= MaxHP.
func (c *Character) Heal(amount int) {
	if amount < 0 {
		return
	}
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// UseMP deducts cost from MP when enough is available.
//
// Postcondition: on false, MP and HP are unchanged; on true, MP was reduced by cost.
func (c *Character) UseMP(cost int) bool {
	if cost < 0 || c.MP < cost {
		return false
	}
	c.MP -= cost
	return true
}

// RestoreMP increases MP by amount, capping at MaxMP. Negative amounts are ignored.
func (c *Character) RestoreMP(amount int) {
	if amount < 0 {
		return
	}
	c.MP += amount
	if c.MP > c.MaxMP {
		c.MP = c.MaxMP
	}
}

// FullRestore resets HP and MP to their maximums. Used between battles.
func (c *Character) FullRestore() {
	c.HP = c.MaxHP
	c.MP = c.MaxMP
}

// Ability returns the known ability with the given id. The basic strike is
// always known, even when not listed.
func (c *Character) Ability(id string) (Ability, bool) {
	for _, a := range c.Abilities {
		if a.ID == id {
			return a, true
		}
	}
	if id == BasicStrike.ID {
		return BasicStrike, true
	}
	return Ability{}, false
}

// Clone returns a deep copy suitable for read-only snapshots.
func (c *Character) Clone() *Character {
	cp := *c
	cp.Abilities = make([]Ability, len(c.Abilities))
	copy(cp.Abilities, c.Abilities)
	return &cp
}
