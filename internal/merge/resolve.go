package merge

import (
	"fmt"
	"math"
	"strings"

	"github.com/cleared-dev/stmtparse/internal/model"
)

// Strategy decides how a merged cell with fewer values than columns is split.
type Strategy string

const (
	// StrategyPositional places values by their x position relative to the
	// header, and behaves like StrategyStrict when positions are missing.
	StrategyPositional Strategy = "positional"
	// StrategyLeft fills columns from the left.
	StrategyLeft Strategy = "left"
	// StrategyStrict refuses to guess.
	StrategyStrict Strategy = "strict"
)

// ParseStrategy validates a configured strategy name. "" selects positional.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case "", StrategyPositional:
		return StrategyPositional, nil
	case StrategyLeft:
		return StrategyLeft, nil
	case StrategyStrict:
		return StrategyStrict, nil
	}
	return "", fmt.Errorf("unknown merge strategy %q", s)
}

// Resolver splits merged cells back into their layout columns.
type Resolver struct {
	Strategy Strategy
}

// Split divides one cell of group g into exactly g.Size() values.
func (r Resolver) Split(g Group, cell model.Cell) ([]string, error) {
	n := g.Size()
	if n == 1 {
		return []string{strings.TrimSpace(cell.Text)}, nil
	}

	out := make([]string, n)
	parts := cell.Lines()
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) == 0:
		return out, nil
	case len(parts) == n:
		copy(out, parts)
		return out, nil
	case len(parts) > n:
		return nil, fmt.Errorf("%w: %d values for %d columns in %q", ErrAmbiguousSplit, len(parts), n, cell.Text)
	}

	switch r.Strategy {
	case StrategyLeft:
		copy(out, parts)
		return out, nil
	case StrategyPositional:
		if len(g.Centers) == n && cell.HasPositions() {
			centers := make([]float64, len(cell.Spans))
			for i, s := range cell.Spans {
				centers[i] = s.Center()
			}
			for i, slot := range align(centers, g.Centers) {
				out[slot] = parts[i]
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %d values for %d columns in %q", ErrAmbiguousSplit, len(parts), n, cell.Text)
}

// Row maps an extracted row onto the layout's columns.
func (r Resolver) Row(groups []Group, row []model.Cell) ([]string, error) {
	var out []string
	for _, g := range groups {
		if g.Col >= len(row) {
			return nil, fmt.Errorf("row has %d cells, header has %d", len(row), len(groups))
		}
		vals, err := r.Split(g, row[g.Col])
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

// align assigns each value (in order) to a distinct slot (in order) so that
// the summed distance between value and slot positions is minimal. Requires
// len(values) <= len(slots). Ties go to the leftmost slots.
func align(values, slots []float64) []int {
	k, n := len(values), len(slots)
	inf := math.Inf(1)

	// cost[i][j]: best cost placing the first i values within the first j slots.
	cost := make([][]float64, k+1)
	for i := range cost {
		cost[i] = make([]float64, n+1)
		for j := range cost[i] {
			if j < i {
				cost[i][j] = inf
			}
		}
	}
	for i := 1; i <= k; i++ {
		for j := i; j <= n; j++ {
			place := cost[i-1][j-1] + math.Abs(values[i-1]-slots[j-1])
			skip := inf
			if j > i {
				skip = cost[i][j-1]
			}
			cost[i][j] = math.Min(place, skip)
		}
	}

	out := make([]int, k)
	i, j := k, n
	for i > 0 {
		if j > i && cost[i][j] == cost[i][j-1] {
			j--
			continue
		}
		out[i-1] = j - 1
		i--
		j--
	}
	return out
}
