package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const (
	ScenarioBase        = "base"
	ScenarioOptimistic  = "optimistic"
	ScenarioPessimistic = "pessimistic"
	ScenarioStress      = "stress"
)

// allocationEpsilon is the tolerance when checking that asset
// allocation fractions sum to 1.0.
const allocationEpsilon = 1e-6

// CashFlowScenario is one client's input assumption set for a
// cash-flow projection. It is treated as immutable for the duration
// of a projection or simulation run.
type CashFlowScenario struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	ScenarioType string `json:"scenario_type"`

	ProjectionYears int `json:"projection_years"`

	RealEquityReturn float64 `json:"real_equity_return"`
	RealBondReturn   float64 `json:"real_bond_return"`
	RealCashReturn   float64 `json:"real_cash_return"`
	InflationRate    float64 `json:"inflation_rate"`

	ClientAge      int `json:"client_age"`
	RetirementAge  int `json:"retirement_age"`
	LifeExpectancy int `json:"life_expectancy"`

	CurrentSavings  float64 `json:"current_savings"`
	PensionValue    float64 `json:"pension_value"`
	InvestmentValue float64 `json:"investment_value"`
	CurrentIncome   float64 `json:"current_income"`
	CurrentExpenses float64 `json:"current_expenses"`

	StatePensionAge    int     `json:"state_pension_age"`
	StatePensionAmount float64 `json:"state_pension_amount"`

	RiskScore                int             `json:"risk_score"`
	VulnerabilityAdjustments json.RawMessage `json:"vulnerability_adjustments,omitempty"`

	AssumptionBasis       string `json:"assumption_basis,omitempty"`
	MarketDataSource      string `json:"market_data_source,omitempty"`
	LastAssumptionsReview string `json:"last_assumptions_review,omitempty"`

	EquityAllocation      float64 `json:"equity_allocation"`
	BondAllocation        float64 `json:"bond_allocation"`
	CashAllocation        float64 `json:"cash_allocation"`
	AlternativeAllocation float64 `json:"alternative_allocation"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Horizon returns the number of years the projection covers: the
// years remaining to life expectancy, capped by projection_years.
func (s *CashFlowScenario) Horizon() int {
	remaining := s.LifeExpectancy - s.ClientAge
	if remaining < 0 {
		remaining = 0
	}
	if s.ProjectionYears < remaining {
		return s.ProjectionYears
	}
	return remaining
}

// Validate checks the scenario's internal consistency and returns
// coded messages. Any CRITICAL message means the scenario must be
// rejected before simulation starts.
func (s *CashFlowScenario) Validate() []CalculationMessage {
	var msgs []CalculationMessage

	switch s.ScenarioType {
	case ScenarioBase, ScenarioOptimistic, ScenarioPessimistic, ScenarioStress:
	default:
		msgs = append(msgs, CalculationMessage{
			Level:   LevelCritical,
			Code:    "INVALID_SCENARIO_TYPE",
			Message: fmt.Sprintf("Unknown scenario type: %q", s.ScenarioType),
		})
	}

	if s.ProjectionYears < 0 {
		msgs = append(msgs, CalculationMessage{
			Level:   LevelCritical,
			Code:    "NEGATIVE_PROJECTION_YEARS",
			Message: fmt.Sprintf("projection_years is %d", s.ProjectionYears),
		})
	}

	if s.RetirementAge > s.LifeExpectancy {
		msgs = append(msgs, CalculationMessage{
			Level:   LevelCritical,
			Code:    "RETIREMENT_AFTER_LIFE_EXPECTANCY",
			Message: fmt.Sprintf("Retirement age %d exceeds life expectancy %d", s.RetirementAge, s.LifeExpectancy),
		})
	}

	if s.ProjectionYears < s.LifeExpectancy-s.ClientAge {
		msgs = append(msgs, CalculationMessage{
			Level:   LevelCritical,
			Code:    "PROJECTION_HORIZON_TOO_SHORT",
			Message: fmt.Sprintf("projection_years %d does not reach life expectancy %d from age %d", s.ProjectionYears, s.LifeExpectancy, s.ClientAge),
		})
	}

	allocsValid := true
	for _, check := range []struct {
		name  string
		value float64
	}{
		{"equity_allocation", s.EquityAllocation},
		{"bond_allocation", s.BondAllocation},
		{"cash_allocation", s.CashAllocation},
		{"alternative_allocation", s.AlternativeAllocation},
	} {
		if math.IsNaN(check.value) || math.IsInf(check.value, 0) || check.value < 0 || check.value > 1 {
			allocsValid = false
			msgs = append(msgs, CalculationMessage{
				Level:   LevelCritical,
				Code:    "INVALID_ALLOCATION",
				Message: fmt.Sprintf("%s is %v, expected a fraction in [0, 1]", check.name, check.value),
			})
		}
	}

	// The sum check is meaningless when an individual allocation is
	// already out of range (a NaN sum compares false against any
	// tolerance).
	if allocsValid {
		allocSum := s.EquityAllocation + s.BondAllocation + s.CashAllocation + s.AlternativeAllocation
		if math.Abs(allocSum-1.0) > allocationEpsilon {
			msgs = append(msgs, CalculationMessage{
				Level:   LevelCritical,
				Code:    "ALLOCATION_SUM_INVALID",
				Message: fmt.Sprintf("Asset allocations sum to %.6f, expected 1.0", allocSum),
			})
		}
	}

	for _, check := range []struct {
		name  string
		value float64
	}{
		{"current_savings", s.CurrentSavings},
		{"pension_value", s.PensionValue},
		{"investment_value", s.InvestmentValue},
		{"current_income", s.CurrentIncome},
		{"current_expenses", s.CurrentExpenses},
		{"state_pension_amount", s.StatePensionAmount},
	} {
		if check.value < 0 || math.IsNaN(check.value) || math.IsInf(check.value, 0) {
			msgs = append(msgs, CalculationMessage{
				Level:   LevelCritical,
				Code:    "INVALID_AMOUNT",
				Message: fmt.Sprintf("%s is %v, expected a non-negative finite amount", check.name, check.value),
			})
		}
	}

	for _, check := range []struct {
		name  string
		value float64
	}{
		{"real_equity_return", s.RealEquityReturn},
		{"real_bond_return", s.RealBondReturn},
		{"real_cash_return", s.RealCashReturn},
		{"inflation_rate", s.InflationRate},
	} {
		if math.IsNaN(check.value) || math.IsInf(check.value, 0) {
			msgs = append(msgs, CalculationMessage{
				Level:   LevelCritical,
				Code:    "INVALID_RATE",
				Message: fmt.Sprintf("%s is not finite", check.name),
			})
		}
	}

	if s.RetirementAge <= s.ClientAge {
		msgs = append(msgs, CalculationMessage{
			Level:   LevelWarning,
			Code:    "RETIREMENT_IN_PAST",
			Message: fmt.Sprintf("Retirement age %d does not exceed current age %d; pension income streams start immediately", s.RetirementAge, s.ClientAge),
		})
	}

	return msgs
}

// ValidationErr returns a *ValidationError holding the scenario's
// critical messages, or nil if the scenario is valid.
func (s *CashFlowScenario) ValidationErr() error {
	msgs := s.Validate()
	var critical []CalculationMessage
	for _, m := range msgs {
		if m.Level == LevelCritical {
			critical = append(critical, m)
		}
	}
	if len(critical) == 0 {
		return nil
	}
	return &ValidationError{Messages: critical}
}
