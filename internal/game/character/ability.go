package character

// Element tags an ability with its thematic category. The engine never
// branches on it; presentation uses it for effects.
type Element string

const (
	ElementPrayer      Element = "prayer"
	ElementScripture   Element = "scripture"
	ElementHolyWater   Element = "holy_water"
	ElementLayingHands Element = "laying_hands"
	ElementFaith       Element = "faith"
	ElementDarkness    Element = "darkness"
)

var validElements = map[Element]bool{
	ElementPrayer:      true,
	ElementScripture:   true,
	ElementHolyWater:   true,
	ElementLayingHands: true,
	ElementFaith:       true,
	ElementDarkness:    true,
}

// Ability is an immutable combat action definition.
type Ability struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Element     Element `yaml:"element"`
	Power       int     `yaml:"power"`
	MPCost      int     `yaml:"mp_cost"`
	TargetsAll  bool    `yaml:"targets_all"`
	Heals       bool    `yaml:"heals"`
	// ScriptureRef is display-only flavor; empty when absent.
	ScriptureRef string `yaml:"scripture_ref"`
}

// BasicStrike is the zero-cost single-target attack every character knows.
var BasicStrike = Ability{
	ID:          "basic",
	Name:        "Strike",
	Description: "A basic attack",
	Element:     ElementFaith,
	Power:       10,
}

// HasScripture reports whether the ability carries a flavor reference.
func (a Ability) HasScripture() bool { return a.ScriptureRef != "" }
