// Package assumptions resolves the return and volatility assumption
// set a projection or simulation runs under.
package assumptions

import (
	"math"

	"cashflow-engine/internal/model"
)

// Asset class indexes into return triples and the correlation matrix.
const (
	Equity = 0
	Bond   = 1
	Cash   = 2
)

// Set is one resolved assumption set: annual real mean returns and
// volatilities per asset class, plus the drawdown and yield rates the
// projector applies.
type Set struct {
	EquityReturn float64 `json:"equity_return"`
	BondReturn   float64 `json:"bond_return"`
	CashReturn   float64 `json:"cash_return"`

	EquityVolatility float64 `json:"equity_volatility"`
	BondVolatility   float64 `json:"bond_volatility"`
	CashVolatility   float64 `json:"cash_volatility"`

	InflationRate float64 `json:"inflation_rate"`

	// PensionDrawdownRate is applied to the prior year's pension pot
	// once the client is at or past retirement age.
	PensionDrawdownRate float64 `json:"pension_drawdown_rate"`

	// InvestmentYield is applied to the prior year's investment
	// portfolio as income.
	InvestmentYield float64 `json:"investment_yield"`

	// Correlation across (equity, bond, cash) annual returns. Must be
	// symmetric positive definite for simulation use.
	Correlation [3][3]float64 `json:"correlation"`
}

func defaultCorrelation() [3][3]float64 {
	return [3][3]float64{
		{1.0, 0.2, 0.0},
		{0.2, 1.0, 0.1},
		{0.0, 0.1, 1.0},
	}
}

// presets carry per-scenario-type volatility and fallback return
// assumptions. Returns and inflation are overridden by the scenario's
// own figures when it supplies them.
var presets = map[string]Set{
	model.ScenarioBase: {
		EquityReturn: 0.05, BondReturn: 0.02, CashReturn: 0.005,
		EquityVolatility: 0.15, BondVolatility: 0.06, CashVolatility: 0.01,
		InflationRate:       0.02,
		PensionDrawdownRate: 0.04,
		InvestmentYield:     0.02,
	},
	model.ScenarioOptimistic: {
		EquityReturn: 0.07, BondReturn: 0.03, CashReturn: 0.01,
		EquityVolatility: 0.13, BondVolatility: 0.05, CashVolatility: 0.01,
		InflationRate:       0.02,
		PensionDrawdownRate: 0.04,
		InvestmentYield:     0.02,
	},
	model.ScenarioPessimistic: {
		EquityReturn: 0.03, BondReturn: 0.01, CashReturn: 0.0,
		EquityVolatility: 0.18, BondVolatility: 0.07, CashVolatility: 0.01,
		InflationRate:       0.03,
		PensionDrawdownRate: 0.035,
		InvestmentYield:     0.015,
	},
	model.ScenarioStress: {
		EquityReturn: 0.0, BondReturn: 0.0, CashReturn: -0.005,
		EquityVolatility: 0.25, BondVolatility: 0.10, CashVolatility: 0.02,
		InflationRate:       0.05,
		PensionDrawdownRate: 0.03,
		InvestmentYield:     0.01,
	},
}

// Preset returns the assumption preset for a scenario type, falling
// back to the base preset for unknown types.
func Preset(scenarioType string) Set {
	set, ok := presets[scenarioType]
	if !ok {
		set = presets[model.ScenarioBase]
	}
	set.Correlation = defaultCorrelation()
	return set
}

// ForScenario resolves the assumption set for a scenario: the
// scenario-type preset (or a remote set for its market data source,
// when a service is configured), overlaid with the scenario's own
// return and inflation figures where they are set.
func ForScenario(s *model.CashFlowScenario) Set {
	set := Preset(s.ScenarioType)

	if s.MarketDataSource != "" {
		if remote, ok := fetchRemote(s.MarketDataSource); ok {
			set = mergeRemote(set, remote)
		}
	}

	if s.RealEquityReturn != 0 {
		set.EquityReturn = s.RealEquityReturn
	}
	if s.RealBondReturn != 0 {
		set.BondReturn = s.RealBondReturn
	}
	if s.RealCashReturn != 0 {
		set.CashReturn = s.RealCashReturn
	}
	if s.InflationRate != 0 {
		set.InflationRate = s.InflationRate
	}
	return set
}

// Means returns the (equity, bond, cash) mean return triple.
func (s Set) Means() [3]float64 {
	return [3]float64{s.EquityReturn, s.BondReturn, s.CashReturn}
}

// Volatilities returns the (equity, bond, cash) volatility triple.
func (s Set) Volatilities() [3]float64 {
	return [3]float64{s.EquityVolatility, s.BondVolatility, s.CashVolatility}
}

// Finite reports whether every numeric field of the set is finite.
func (s Set) Finite() bool {
	values := []float64{
		s.EquityReturn, s.BondReturn, s.CashReturn,
		s.EquityVolatility, s.BondVolatility, s.CashVolatility,
		s.InflationRate, s.PensionDrawdownRate, s.InvestmentYield,
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(s.Correlation[i][j]) || math.IsInf(s.Correlation[i][j], 0) {
				return false
			}
		}
	}
	return true
}
