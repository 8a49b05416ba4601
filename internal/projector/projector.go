// Package projector advances a cash-flow scenario year by year,
// producing one CashFlowProjection row per year from the client's
// current age to life expectancy.
package projector

import (
	"fmt"

	"cashflow-engine/internal/assumptions"
	"cashflow-engine/internal/model"
)

// Expense split of current_expenses. Only the essential component is
// inflated; lifestyle and discretionary stay flat in real terms.
const (
	essentialShare     = 0.60
	lifestyleShare     = 0.25
	discretionaryShare = 0.15
)

// Project produces the deterministic base projection for a scenario
// under a fixed assumption set. The scenario is expected to have been
// validated by the caller; a zero-year horizon yields an empty
// sequence, not an error.
func Project(s *model.CashFlowScenario, set assumptions.Set) []model.CashFlowProjection {
	horizon := s.Horizon()
	if horizon == 0 {
		return []model.CashFlowProjection{}
	}
	fixed := make([][3]float64, horizon)
	means := set.Means()
	for i := range fixed {
		fixed[i] = means
	}
	rows, _ := project(s, set, fixed)
	return rows
}

// ProjectWithReturns runs the same projection with an explicit annual
// return triple per year, as supplied by a simulation trial. It
// requires at least Horizon() triples.
func ProjectWithReturns(s *model.CashFlowScenario, set assumptions.Set, returns [][3]float64) ([]model.CashFlowProjection, error) {
	horizon := s.Horizon()
	if horizon == 0 {
		return []model.CashFlowProjection{}, nil
	}
	if len(returns) < horizon {
		return nil, fmt.Errorf("projector: %d return triples supplied, horizon needs %d", len(returns), horizon)
	}
	return project(s, set, returns)
}

func project(s *model.CashFlowScenario, set assumptions.Set, returns [][3]float64) ([]model.CashFlowProjection, error) {
	horizon := s.Horizon()
	rows := make([]model.CashFlowProjection, 0, horizon)

	cash := s.CurrentSavings
	invest := s.InvestmentValue
	pension := s.PensionValue
	depleted := false

	baseEssential := s.CurrentExpenses * essentialShare
	lifestyle := s.CurrentExpenses * lifestyleShare
	discretionary := s.CurrentExpenses * discretionaryShare
	statePension := s.StatePensionAmount

	for t := 1; t <= horizon; t++ {
		age := s.ClientAge + t

		priorInvest := invest
		priorPension := pension

		// Inflation applies to the state pension amount and the
		// essential expense component each year.
		statePension *= 1 + set.InflationRate
		baseEssential *= 1 + set.InflationRate

		row := model.CashFlowProjection{
			ScenarioID:            s.ID,
			Year:                  t,
			Age:                   age,
			EssentialExpenses:     baseEssential,
			LifestyleExpenses:     lifestyle,
			DiscretionaryExpenses: discretionary,
		}

		if age < s.RetirementAge {
			row.EmploymentIncome = s.CurrentIncome
		}
		if age >= s.RetirementAge && !depleted {
			row.PensionIncome = set.PensionDrawdownRate * priorPension
		}
		if age >= s.StatePensionAge {
			row.StatePensionIncome = statePension
		}
		if !depleted {
			row.InvestmentIncome = set.InvestmentYield * priorInvest
		}

		row.TotalIncome = row.EmploymentIncome + row.PensionIncome +
			row.StatePensionIncome + row.InvestmentIncome + row.OtherIncome
		row.TotalExpenses = row.EssentialExpenses + row.LifestyleExpenses + row.DiscretionaryExpenses
		row.AnnualSurplusDeficit = row.TotalIncome - row.TotalExpenses

		if depleted {
			// Depletion is terminal: the projection keeps recording
			// full-length rows, but balances stay at zero.
			row.Depleted = true
			row.SustainabilityRatio = 0
			rows = append(rows, row)
			continue
		}

		// Growth first, then the signed surplus.
		portfolioReturn := weightedReturn(s, returns[t-1])
		pension *= 1 + portfolioReturn
		invest *= 1 + portfolioReturn
		cash *= 1 + returns[t-1][assumptions.Cash]

		// Drawdown income and investment yield are distributions out of
		// their buckets, already counted in total income.
		pension -= row.PensionIncome
		if pension < 0 {
			pension = 0
		}
		invest -= row.InvestmentIncome
		if invest < 0 {
			invest = 0
		}

		if row.AnnualSurplusDeficit >= 0 {
			cash += row.AnnualSurplusDeficit
		} else {
			deficit := -row.AnnualSurplusDeficit
			cash, deficit = drawFrom(cash, deficit)
			invest, deficit = drawFrom(invest, deficit)
			pension, deficit = drawFrom(pension, deficit)
			if deficit > 0 {
				cash, invest, pension = 0, 0, 0
				depleted = true
			}
		}
		if cash+invest+pension <= 0 {
			depleted = true
		}

		row.CashSavings = cash
		row.InvestmentPortfolio = invest
		row.PensionPot = pension
		row.TotalAssets = cash + invest + pension
		row.Depleted = depleted

		denom := row.TotalExpenses
		if denom < 1 {
			denom = 1
		}
		row.SustainabilityRatio = row.TotalAssets / denom

		rows = append(rows, row)
	}

	return rows, nil
}

// weightedReturn blends the annual return triple by the scenario's
// allocation. Alternative assets are proxied at the equity return.
func weightedReturn(s *model.CashFlowScenario, r [3]float64) float64 {
	return s.EquityAllocation*r[assumptions.Equity] +
		s.BondAllocation*r[assumptions.Bond] +
		s.CashAllocation*r[assumptions.Cash] +
		s.AlternativeAllocation*r[assumptions.Equity]
}

func drawFrom(balance, deficit float64) (float64, float64) {
	if deficit <= 0 {
		return balance, 0
	}
	if balance >= deficit {
		return balance - deficit, 0
	}
	return 0, deficit - balance
}

// DepletionAge returns the age at which the projection first records
// a depleted state, or nil if assets last the full horizon.
func DepletionAge(rows []model.CashFlowProjection) *int {
	for _, row := range rows {
		if row.Depleted {
			age := row.Age
			return &age
		}
	}
	return nil
}
