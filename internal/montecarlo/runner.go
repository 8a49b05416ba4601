package montecarlo

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"cashflow-engine/internal/assumptions"
	"cashflow-engine/internal/model"
	"cashflow-engine/internal/projector"
)

// Trial count bounds.
const (
	MinTrials = 200
	MaxTrials = 5000
)

// Options configure one Monte Carlo run.
type Options struct {
	Trials int
	Seed   uint64
	// Workers bounds the trial pool; 0 means GOMAXPROCS.
	Workers int
}

// GoalResult is one goal's evaluation across all trials. Goals whose
// target age falls outside the projection horizon are not evaluated.
type GoalResult struct {
	GoalID      string  `json:"goal_id"`
	Evaluated   bool    `json:"evaluated"`
	Probability float64 `json:"probability"`
}

// Result is the aggregate of all trials.
type Result struct {
	Trials             int                    `json:"trials"`
	Seed               uint64                 `json:"seed"`
	SuccessProbability float64                `json:"successProbability"`
	ShortfallRisk      float64                `json:"shortfallRisk"`
	DepletedTrials     int                    `json:"depletedTrials"`
	Bands              []model.PercentileBand `json:"bands"`
	GoalResults        []GoalResult           `json:"goalResults,omitempty"`
}

type trialOutcome struct {
	depleted  bool
	shortfall bool
	goalMet   []bool
	assets    []float64
}

// Run executes opts.Trials independent projections of the scenario
// under generator-supplied returns and reduces them commutatively, so
// the result is identical regardless of trial scheduling. The
// scenario is read-only for the duration of the run.
func Run(ctx context.Context, scenario *model.CashFlowScenario, set assumptions.Set, goals []model.ClientGoal, opts Options) (*Result, error) {
	if opts.Trials < MinTrials || opts.Trials > MaxTrials {
		return nil, &ConfigError{
			Code:    "TRIAL_COUNT_OUT_OF_RANGE",
			Message: fmt.Sprintf("trials must be in [%d, %d], got %d", MinTrials, MaxTrials, opts.Trials),
		}
	}

	gen, err := NewReturnGenerator(set, opts.Seed)
	if err != nil {
		return nil, err
	}

	horizon := scenario.Horizon()
	goalIdx := goalYearIndexes(scenario, goals, horizon)

	// Each trial writes only its own slot; aggregation happens after
	// the pool drains, indexed by trial number rather than completion
	// order.
	outcomes := make([]trialOutcome, opts.Trials)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for trial := 0; trial < opts.Trials; trial++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			draws := gen.Draws(trial, horizon)
			rows, err := projector.ProjectWithReturns(scenario, set, draws)
			if err != nil {
				return err
			}
			outcomes[trial] = reduceTrial(rows, goals, goalIdx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregate(scenario, goals, goalIdx, outcomes, gen.Seed(), horizon), nil
}

func reduceTrial(rows []model.CashFlowProjection, goals []model.ClientGoal, goalIdx []int) trialOutcome {
	out := trialOutcome{
		goalMet: make([]bool, len(goals)),
		assets:  make([]float64, len(rows)),
	}
	for i, row := range rows {
		out.assets[i] = row.TotalAssets
		if row.Depleted {
			out.depleted = true
		}
	}
	for gi, idx := range goalIdx {
		if idx < 0 {
			continue
		}
		met := out.assets[idx] >= goals[gi].TargetAmount
		out.goalMet[gi] = met
		if !met {
			out.shortfall = true
		}
	}
	return out
}

func aggregate(scenario *model.CashFlowScenario, goals []model.ClientGoal, goalIdx []int, outcomes []trialOutcome, seed uint64, horizon int) *Result {
	trials := len(outcomes)
	res := &Result{
		Trials: trials,
		Seed:   seed,
	}

	successCount := 0
	shortfallCount := 0
	goalMetCounts := make([]int, len(goals))
	for _, out := range outcomes {
		if out.depleted {
			res.DepletedTrials++
		} else {
			successCount++
		}
		if out.shortfall {
			shortfallCount++
		}
		for gi, met := range out.goalMet {
			if met {
				goalMetCounts[gi]++
			}
		}
	}
	res.SuccessProbability = float64(successCount) / float64(trials)
	res.ShortfallRisk = float64(shortfallCount) / float64(trials)

	for gi := range goals {
		gr := GoalResult{GoalID: goals[gi].ID}
		if goalIdx[gi] >= 0 {
			gr.Evaluated = true
			gr.Probability = float64(goalMetCounts[gi]) / float64(trials)
		}
		res.GoalResults = append(res.GoalResults, gr)
	}

	res.Bands = make([]model.PercentileBand, 0, horizon)
	yearAssets := make([]float64, trials)
	for year := 0; year < horizon; year++ {
		for i, out := range outcomes {
			yearAssets[i] = out.assets[year]
		}
		sort.Float64s(yearAssets)
		res.Bands = append(res.Bands, model.PercentileBand{
			Year: year + 1,
			Age:  scenario.ClientAge + year + 1,
			P10:  stat.Quantile(0.10, stat.Empirical, yearAssets, nil),
			P50:  stat.Quantile(0.50, stat.Empirical, yearAssets, nil),
			P90:  stat.Quantile(0.90, stat.Empirical, yearAssets, nil),
		})
	}

	return res
}

// goalYearIndexes maps each goal to the projection row index of its
// target age, or -1 when the target age falls outside the horizon.
func goalYearIndexes(scenario *model.CashFlowScenario, goals []model.ClientGoal, horizon int) []int {
	idx := make([]int, len(goals))
	for i, goal := range goals {
		offset := goal.TargetAge - scenario.ClientAge
		if offset < 1 || offset > horizon {
			idx[i] = -1
			continue
		}
		idx[i] = offset - 1
	}
	return idx
}
