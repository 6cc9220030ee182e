package combat

import (
	"context"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/ai"
	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
)

// lifecycle event names
const (
	evStart   = "start"
	evWin     = "win"
	evLose    = "lose"
	evAbandon = "abandon"
)

// Options configures a Battle. Zero values select defaults.
type Options struct {
	// ID identifies the battle in events and logs.
	ID string
	// Ledger supplies equipment bonuses; nil means none. Do not pass a typed
	// nil pointer.
	Ledger BonusLedger
	// Source defaults to dice.NewCryptoSource().
	Source dice.Source
	// Observer defaults to a no-op.
	Observer Observer
	// Scheduler defaults to an ImmediateScheduler.
	Scheduler Scheduler
	// Chooser defaults to ai.RandomChooser.
	Chooser ai.Chooser
	Policy  Policy
	// AIDelayTicks is passed to Scheduler for every enemy turn.
	AIDelayTicks int
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// OnEnd is called once when the battle concludes, outside the battle lock.
	OnEnd func(victory bool)
}

// Battle is a single turn-based encounter between a party roster and an enemy
// roster. All methods are safe for concurrent use.
type Battle struct {
	mu sync.Mutex

	id       string
	opts     Options
	policy   Policy
	resolver Resolver
	logger   *zap.Logger
	lc       *fsm.FSM

	party     []*character.Character
	enemies   []*character.Character
	side      map[*character.Character]Side
	turnOrder []*character.Character
	cursor    int
	round     int
	turns     int
	current   *character.Character

	outcome       Outcome
	log           *Narration
	lastScripture string
	defending     map[*character.Character]int

	// generation is bumped whenever an AI turn is scheduled or the battle
	// terminates; a callback carrying an older generation does nothing.
	generation   uint64
	needSchedule bool
	pending      Handle

	outbox  []Event
	endOnce bool
	ended   bool
}

// NewBattle returns a battle in the not_started state.
//
// Precondition: opts.Policy must pass Validate.
func NewBattle(opts Options) (*Battle, error) {
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewImmediateScheduler()
	}
	if opts.Chooser == nil {
		opts.Chooser = ai.RandomChooser{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	policy := opts.Policy.withDefaults()
	b := &Battle{
		id:     opts.ID,
		opts:   opts,
		policy: policy,
		resolver: Resolver{
			Ledger:        opts.Ledger,
			Source:        opts.Source,
			VarianceMinBP: policy.VarianceMinBP,
			VarianceMaxBP: policy.VarianceMaxBP,
		},
		logger:    opts.Logger.With(zap.String("battle_id", opts.ID)),
		side:      make(map[*character.Character]Side),
		log:       NewNarration(policy.LogCapacity),
		defending: make(map[*character.Character]int),
	}
	b.lc = fsm.NewFSM(StateNotStarted, fsm.Events{
		{Name: evStart, Src: []string{StateNotStarted}, Dst: StateInProgress},
		{Name: evWin, Src: []string{StateInProgress}, Dst: StateVictory},
		{Name: evLose, Src: []string{StateInProgress}, Dst: StateDefeat},
		{Name: evAbandon, Src: []string{StateNotStarted, StateInProgress}, Dst: StateAbandoned},
	}, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			b.logger.Debug("battle state changed", zap.String("from", e.Src), zap.String("to", e.Dst))
		},
	})
	return b, nil
}

// ID returns the battle identifier.
func (b *Battle) ID() string { return b.id }

// Start stores the rosters by reference, builds the turn order and advances
// to the first living participant.
//
// Precondition: both rosters non-empty; every participant ID unique across
// both rosters; battle not yet started.
// Postcondition: state is in_progress, or already concluded if a roster
// started with no living members.
func (b *Battle) Start(party, enemies []*character.Character) error {
	if len(party) == 0 || len(enemies) == 0 {
		return ErrEmptyRoster
	}
	seen := make(map[string]bool, len(party)+len(enemies))
	for _, roster := range [][]*character.Character{party, enemies} {
		for _, c := range roster {
			if seen[c.ID] {
				return fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)
			}
			seen[c.ID] = true
		}
	}
	b.mu.Lock()
	defer b.finish()
	defer b.mu.Unlock()

	if b.lc.Current() != StateNotStarted {
		return ErrAlreadyStarted
	}
	b.party = party
	b.enemies = enemies
	for _, c := range party {
		b.side[c] = SideParty
	}
	for _, c := range enemies {
		b.side[c] = SideEnemy
	}
	b.turnOrder = BuildTurnOrder(party, enemies)
	b.cursor = 0
	b.round = 1
	if err := b.lc.Event(context.Background(), evStart); err != nil {
		return fmt.Errorf("starting battle: %w", err)
	}
	b.narrate("Battle Start!")
	b.logger.Info("battle started",
		zap.Int("party", len(party)),
		zap.Int("enemies", len(enemies)),
	)
	b.checkEndLocked()
	b.advanceLocked()
	return nil
}

// Abandon terminates the battle without an outcome. Pending AI turns become
// no-ops. Abandoning a concluded battle does nothing.
func (b *Battle) Abandon() {
	b.mu.Lock()
	state := b.lc.Current()
	if state != StateNotStarted && state != StateInProgress {
		b.mu.Unlock()
		return
	}
	_ = b.lc.Event(context.Background(), evAbandon)
	b.generation++
	b.needSchedule = false
	h := b.pending
	b.pending = nil
	b.revertDefendsLocked()
	b.current = nil
	b.logger.Info("battle abandoned")
	b.mu.Unlock()
	if h != nil {
		h.Cancel()
	}
}

// State returns the lifecycle state name.
func (b *Battle) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lc.Current()
}

// Outcome returns the battle outcome.
func (b *Battle) Outcome() Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outcome
}

// InProgress reports whether actions are currently accepted.
func (b *Battle) InProgress() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inProgressLocked()
}

// IsPlayerTurn reports whether the current actor waits for a player call.
func (b *Battle) IsPlayerTurn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inProgressLocked() && b.current != nil && b.current.Class.HumanControlled()
}

// CurrentID returns the ID of the character whose turn it is, or "".
func (b *Battle) CurrentID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return ""
	}
	return b.current.ID
}

// Log returns the retained narration lines, oldest first.
func (b *Battle) Log() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.Lines()
}

// LastScripture returns the most recent scripture line, or "".
func (b *Battle) LastScripture() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastScripture
}

// EvaluateEnd runs the end-condition check and returns the outcome. Once an
// outcome is decided further calls return it without side effects.
func (b *Battle) EvaluateEnd() Outcome {
	b.mu.Lock()
	defer b.finish()
	defer b.mu.Unlock()
	b.checkEndLocked()
	return b.outcome
}

func (b *Battle) inProgressLocked() bool {
	return b.lc.Current() == StateInProgress
}

func (b *Battle) narrate(line string) {
	b.log.Append(line)
}

func (b *Battle) emit(e Event) {
	e.BattleID = b.id
	b.outbox = append(b.outbox, e)
}

// finish delivers queued events and the end callback, then schedules a
// pending AI turn. Must be called without the lock held.
func (b *Battle) finish() {
	b.mu.Lock()
	events := b.outbox
	b.outbox = nil
	fireEnd := b.ended && !b.endOnce
	if fireEnd {
		b.endOnce = true
	}
	victory := b.outcome == Victory
	b.mu.Unlock()

	for _, e := range events {
		b.opts.Observer.Notify(e)
	}
	if fireEnd && b.opts.OnEnd != nil {
		b.opts.OnEnd(victory)
	}
	b.dispatch()
}

// dispatch hands a pending AI turn to the scheduler outside the lock.
func (b *Battle) dispatch() {
	b.mu.Lock()
	if !b.needSchedule {
		b.mu.Unlock()
		return
	}
	b.needSchedule = false
	gen := b.generation
	b.mu.Unlock()

	h := b.opts.Scheduler.Schedule(b.opts.AIDelayTicks, func() { b.resolveAITurn(gen) })

	b.mu.Lock()
	if b.generation == gen && b.inProgressLocked() {
		b.pending = h
	}
	b.mu.Unlock()
}

// stepCursor moves to the next turn-order slot, wrapping to 0.
func (b *Battle) stepCursor() {
	b.cursor++
	if b.cursor >= len(b.turnOrder) {
		b.cursor = 0
		b.round++
	}
}

// nextTurnLocked moves past the current actor and advances.
func (b *Battle) nextTurnLocked() {
	if !b.inProgressLocked() {
		return
	}
	b.stepCursor()
	b.advanceLocked()
}

// advanceLocked scans at most len(turnOrder) slots from the cursor for a
// living participant and begins its turn.
func (b *Battle) advanceLocked() {
	if !b.inProgressLocked() {
		return
	}
	for i := 0; i < len(b.turnOrder); i++ {
		c := b.turnOrder[b.cursor]
		if c.IsAlive() {
			b.beginTurnLocked(c)
			return
		}
		b.stepCursor()
	}
	b.current = nil
	b.logger.Error("no living participant in turn order")
	b.checkEndLocked()
}

func (b *Battle) beginTurnLocked(c *character.Character) {
	b.current = c
	b.turns++
	if bonus, ok := b.defending[c]; ok {
		c.Defense -= bonus
		delete(b.defending, c)
	}
	human := c.Class.HumanControlled()
	b.emit(Event{
		Kind:            EventTurnStart,
		CharacterID:     c.ID,
		EnemySide:       b.side[c] == SideEnemy,
		HumanControlled: human,
	})
	b.logger.Debug("turn started",
		zap.String("character_id", c.ID),
		zap.Int("round", b.round),
		zap.Bool("human", human),
	)
	if !human {
		b.generation++
		b.needSchedule = true
	}
}

func (b *Battle) revertDefendsLocked() {
	for c, bonus := range b.defending {
		c.Defense -= bonus
	}
	b.defending = make(map[*character.Character]int)
}

// roster returns the characters on side s.
func (b *Battle) roster(s Side) []*character.Character {
	if s == SideParty {
		return b.party
	}
	return b.enemies
}

func living(cs []*character.Character) []*character.Character {
	out := make([]*character.Character, 0, len(cs))
	for _, c := range cs {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

func (b *Battle) find(id string) (*character.Character, bool) {
	for _, c := range b.turnOrder {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
