package engine

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

const (
	strikeCost    = 10
	defendRestore = 5
)

// Outcome reports how a battle ended.
type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeFled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeFled:
		return "fled"
	default:
		return "ongoing"
	}
}

// Battle runs one turn-based encounter between the player and a single
// enemy instance. Every player action resolves synchronously, including
// the enemy's answering turn; the battle spawns no goroutines and holds
// no state outside this struct and the shared GameState.
type Battle struct {
	gs  *state.GameState
	bus *events.Bus
	rng *RNG
	log *zap.Logger

	instance string
	def      types.EnemyDef
	behavior map[string]float64

	enemyHealth    int
	playerGuarding bool
	enemyGuarding  bool
	round          int
	outcome        Outcome
}

// NewBattle begins an encounter against the given enemy definition.
// instance is the world id of this particular enemy ("goblin_2"); the
// enemy-dead event carries it on victory so kill objectives can match
// either the instance or its generic type.
func NewBattle(gs *state.GameState, def types.EnemyDef, instance string, bus *events.Bus, rng *RNG, log *zap.Logger) *Battle {
	if instance == "" {
		instance = def.ID
	}
	health := def.Health
	if health < 1 {
		health = 1
	}
	b := &Battle{
		gs:          gs,
		bus:         bus,
		rng:         rng,
		log:         log,
		instance:    instance,
		def:         def,
		enemyHealth: health,
	}
	if len(def.Behavior) > 0 {
		b.behavior = make(map[string]float64, len(def.Behavior))
		for action, weight := range def.Behavior {
			b.behavior[action] = float64(weight)
		}
	}
	log.Info("battle started",
		zap.String("enemy", instance),
		zap.Int("health", health),
		zap.Bool("boss", def.Boss))
	return b
}

// Attack swings at the enemy, then lets the enemy answer.
func (b *Battle) Attack() []string {
	if b.outcome != OutcomeOngoing {
		return nil
	}
	b.round++
	out := b.playerHit(fmt.Sprintf("You attack the %s!", b.name()), 1)
	if b.outcome != OutcomeOngoing {
		return out
	}
	return append(out, b.enemyTurn()...)
}

// Strike spends energy on a heavier attack rolling two dice. Without
// enough energy the attempt costs nothing and the round does not pass.
func (b *Battle) Strike() []string {
	if b.outcome != OutcomeOngoing {
		return nil
	}
	if !b.gs.UseEnergy(strikeCost) {
		return []string{fmt.Sprintf("You are too exhausted to strike. (need %d energy)", strikeCost)}
	}
	b.round++
	out := b.playerHit(fmt.Sprintf("You pour your energy into a crushing strike at the %s!", b.name()), 2)
	if b.outcome != OutcomeOngoing {
		return out
	}
	return append(out, b.enemyTurn()...)
}

// Defend braces for the enemy's next blow, halving its damage this
// round, and recovers a little energy.
func (b *Battle) Defend() []string {
	if b.outcome != OutcomeOngoing {
		return nil
	}
	b.round++
	b.playerGuarding = true
	b.gs.RestoreEnergy(defendRestore)
	out := []string{fmt.Sprintf("You raise your guard. (+%d energy, incoming damage halved)", defendRestore)}
	out = append(out, b.enemyTurn()...)
	b.playerGuarding = false
	return out
}

// Flee attempts to escape: 4+ on a d6 breaks away, otherwise the enemy
// punishes the attempt with a free turn.
func (b *Battle) Flee() []string {
	if b.outcome != OutcomeOngoing {
		return nil
	}
	b.round++
	roll := b.rng.Roll(6)
	if roll >= 4 {
		b.outcome = OutcomeFled
		b.log.Info("battle fled", zap.String("enemy", b.instance), zap.Int("round", b.round))
		b.bus.Publish(events.BattleEnded{Enemy: b.instance, Fled: true})
		return []string{fmt.Sprintf("You turn and run! Roll: 1d6 → [%d]. You escape!", roll)}
	}
	out := []string{fmt.Sprintf("You try to run but can't escape! Roll: 1d6 → [%d]", roll)}
	return append(out, b.enemyTurn()...)
}

// playerHit rolls the given number of dice against the enemy's defense.
// Damage is max(1, rolls + attack - defense), halved while the enemy
// guards.
func (b *Battle) playerHit(announce string, dice int) []string {
	sum := 0
	parts := make([]string, dice)
	for i := range parts {
		r := b.rng.Roll(6)
		sum += r
		parts[i] = strconv.Itoa(r)
	}
	atk := b.gs.AttackPower()
	dmg := sum + atk - b.def.Defense
	if dmg < 1 {
		dmg = 1
	}
	out := []string{
		announce,
		fmt.Sprintf("  Roll: %dd6+%d → [%s]+%d = %d vs defense %d → %d damage",
			dice, atk, strings.Join(parts, " "), atk, sum+atk, b.def.Defense, dmg),
	}
	if b.enemyGuarding {
		b.enemyGuarding = false
		dmg = halve(dmg)
		out = append(out, fmt.Sprintf("The %s's guard blunts the blow to %d damage.", b.name(), dmg))
	}
	b.enemyHealth -= dmg
	if b.enemyHealth <= 0 {
		b.enemyHealth = 0
		return append(out, b.victory()...)
	}
	out = append(out, fmt.Sprintf("The %s has %d health left.", b.name(), b.enemyHealth))
	return out
}

// enemyTurn picks an action from the enemy's weighted behavior table.
// An empty table defaults to attack.
func (b *Battle) enemyTurn() []string {
	action := "attack"
	if len(b.behavior) > 0 {
		if a := b.rng.WeightedChoice(b.behavior); a != "" {
			action = a
		}
	}
	switch action {
	case "attack":
		return b.enemyAttack()
	case "defend":
		b.enemyGuarding = true
		return []string{fmt.Sprintf("The %s braces for your next attack.", b.name())}
	case "taunt":
		return []string{fmt.Sprintf("The %s snarls, daring you to come closer.", b.name())}
	default:
		return []string{fmt.Sprintf("The %s hesitates.", b.name())}
	}
}

func (b *Battle) enemyAttack() []string {
	roll := b.rng.Roll(6)
	def := b.gs.Defense()
	dmg := roll + b.def.AttackPower - def
	if dmg < 1 {
		dmg = 1
	}
	out := []string{
		fmt.Sprintf("The %s attacks you!", b.name()),
		fmt.Sprintf("  Roll: 1d6+%d → [%d]+%d = %d vs defense %d → %d damage",
			b.def.AttackPower, roll, b.def.AttackPower, roll+b.def.AttackPower, def, dmg),
	}
	if b.playerGuarding {
		dmg = halve(dmg)
		out = append(out, fmt.Sprintf("Your guard halves it to %d damage.", dmg))
	}
	b.gs.Damage(dmg)
	if b.gs.Dead() {
		return append(out, b.defeat()...)
	}
	out = append(out, fmt.Sprintf("You have %d health left.", b.gs.Health()))
	return out
}

// victory grants the enemy's rewards, then announces the kill on the
// bus: enemy-dead first so kill objectives advance before anyone reacts
// to the battle closing.
func (b *Battle) victory() []string {
	b.outcome = OutcomeVictory
	out := []string{fmt.Sprintf("The %s is defeated!", b.name())}
	if b.def.ExpReward > 0 {
		levels := b.gs.AddExp(b.def.ExpReward)
		out = append(out, fmt.Sprintf("You gain %d exp.", b.def.ExpReward))
		if levels > 0 {
			out = append(out, fmt.Sprintf("Level up! You are now level %d.", b.gs.Level()))
		}
	}
	if b.def.GoldReward > 0 {
		b.gs.AddGold(b.def.GoldReward)
		out = append(out, fmt.Sprintf("You loot %d gold.", b.def.GoldReward))
	}
	if b.def.Boss {
		b.gs.RecordBossDefeat(b.def.ID)
	}
	b.log.Info("battle won",
		zap.String("enemy", b.instance),
		zap.Int("round", b.round),
		zap.Int("exp", b.def.ExpReward),
		zap.Int("gold", b.def.GoldReward))
	b.bus.Publish(events.EnemyDead{Enemy: b.instance})
	b.bus.Publish(events.BattleEnded{Enemy: b.instance, Victory: true})
	return out
}

func (b *Battle) defeat() []string {
	b.outcome = OutcomeDefeat
	b.gs.SetFlag("game_over", true)
	b.log.Info("battle lost", zap.String("enemy", b.instance), zap.Int("round", b.round))
	b.bus.Publish(events.BattleEnded{Enemy: b.instance})
	return []string{"You fall to the ground, defeated."}
}

// Outcome reports the battle's current result.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Done reports whether the battle has resolved.
func (b *Battle) Done() bool { return b.outcome != OutcomeOngoing }

// EnemyHealth returns the enemy's remaining health.
func (b *Battle) EnemyHealth() int { return b.enemyHealth }

// Enemy returns the instance id under attack.
func (b *Battle) Enemy() string { return b.instance }

// Round returns how many player turns have been taken.
func (b *Battle) Round() int { return b.round }

func (b *Battle) name() string {
	if b.def.Name != "" {
		return b.def.Name
	}
	return b.instance
}

func halve(dmg int) int {
	if dmg < 2 {
		return 1
	}
	return dmg / 2
}
