// Package dice provides the random source used by battle, traversal and
// content generation. Every roll goes through a Source so tests can script
// the exact sequence of values.
package dice

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"regexp"
	"strconv"
	"strings"
)

// Source is the minimal random source the Roller needs. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// RollResult contains the result of a dice expression evaluation
type RollResult struct {
	Total      int    // Final computed value
	Rolls      []int  // Individual die rolls (if applicable)
	Expression string // Original expression
}

// Roller handles dice rolling with a configurable random source
type Roller struct {
	src Source
}

// NewRoller creates a new Roller with the given random source
func NewRoller(src Source) *Roller {
	return &Roller{src: src}
}

// NewSeededRoller creates a Roller backed by math/rand with a fixed seed.
func NewSeededRoller(seed int64) *Roller {
	return NewRoller(mrand.New(mrand.NewSource(seed)))
}

// NewSeed returns a random seed from the operating system's entropy source.
func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) & (1<<63 - 1)), nil
}

// Intn returns a value in [0, n). Non-positive n yields 0.
func (r *Roller) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.src.Intn(n)
}

// Float64 returns a value in [0, 1).
func (r *Roller) Float64() float64 {
	return r.src.Float64()
}

// Range returns a value in [min, max] inclusive.
func (r *Roller) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min+1)
}

// Chance reports whether a single draw falls under probability p.
func (r *Roller) Chance(p float64) bool {
	return r.Float64() < p
}

// Weighted picks an index with probability proportional to its weight.
// Returns -1 when no weight is positive.
func (r *Roller) Weighted(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}

	pick := r.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if pick < w {
			return i
		}
		pick -= w
	}
	return len(weights) - 1
}

// Roll evaluates a dice expression and returns the result
// Supported syntax:
//   - Basic dice: "3d6" (roll 3 six-sided dice)
//   - Arithmetic: "3d6+5", "2d8-2", "3d6*2", "2d10/2"
//   - Constants: "5", "10"
//   - Parentheses: "(2d6+3)*2"
func (r *Roller) Roll(expression string) (*RollResult, error) {
	expr := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(expression)), " ", "")
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	total, rolls, err := r.evaluate(expr)
	if err != nil {
		return nil, fmt.Errorf("roll %q: %w", expression, err)
	}

	return &RollResult{Total: total, Rolls: rolls, Expression: expression}, nil
}

// MustRoll evaluates an expression that has already passed Validate. It
// panics on a malformed expression.
func (r *Roller) MustRoll(expression string) int {
	res, err := r.Roll(expression)
	if err != nil {
		panic(err)
	}
	return res.Total
}

// Validate reports whether expression parses. The dice rolled while checking
// are thrown away.
func Validate(expression string) error {
	_, err := NewSeededRoller(1).Roll(expression)
	return err
}

// evaluate parses and evaluates an expression, returning total and rolls
func (r *Roller) evaluate(expr string) (int, []int, error) {
	for strings.Contains(expr, "(") {
		start := strings.LastIndex(expr, "(")
		end := strings.Index(expr[start:], ")") + start
		if end <= start {
			return 0, nil, fmt.Errorf("mismatched parentheses in expression: %s", expr)
		}

		inner, _, err := r.evaluate(expr[start+1 : end])
		if err != nil {
			return 0, nil, err
		}
		expr = expr[:start] + strconv.Itoa(inner) + expr[end+1:]
	}

	// Lowest precedence first, scanning right to left for left associativity
	for _, ops := range []string{"+-", "*/"} {
		for i := len(expr) - 1; i > 0; i-- {
			if !strings.ContainsRune(ops, rune(expr[i])) {
				continue
			}

			left, leftRolls, err := r.evaluate(expr[:i])
			if err != nil {
				return 0, nil, err
			}
			right, rightRolls, err := r.evaluate(expr[i+1:])
			if err != nil {
				return 0, nil, err
			}

			rolls := append(leftRolls, rightRolls...)
			switch expr[i] {
			case '+':
				return left + right, rolls, nil
			case '-':
				return left - right, rolls, nil
			case '*':
				return left * right, rolls, nil
			default:
				if right == 0 {
					return 0, nil, fmt.Errorf("division by zero")
				}
				return left / right, rolls, nil
			}
		}
	}

	return r.evaluateTerm(expr)
}

// diceRegex matches dice notation like "3d6" or "d20"
var diceRegex = regexp.MustCompile(`^(\d*)d(\d+)$`)

// evaluateTerm evaluates a single term (dice or constant)
func (r *Roller) evaluateTerm(term string) (int, []int, error) {
	if num, err := strconv.Atoi(term); err == nil {
		return num, nil, nil
	}

	matches := diceRegex.FindStringSubmatch(term)
	if matches == nil {
		return 0, nil, fmt.Errorf("invalid term: %s", term)
	}

	numDice := 1
	if matches[1] != "" {
		numDice, _ = strconv.Atoi(matches[1])
	}
	sides, _ := strconv.Atoi(matches[2])
	if numDice <= 0 || sides <= 0 {
		return 0, nil, fmt.Errorf("invalid dice specification: %s", term)
	}

	total := 0
	rolls := make([]int, numDice)
	for i := range rolls {
		rolls[i] = r.Intn(sides) + 1
		total += rolls[i]
	}
	return total, rolls, nil
}
