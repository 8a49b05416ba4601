package model

import (
	"math"
	"testing"
)

func validScenario() CashFlowScenario {
	return CashFlowScenario{
		ID:                    "scn-1",
		ClientID:              "cli-1",
		ScenarioType:          ScenarioBase,
		ProjectionYears:       30,
		ClientAge:             60,
		RetirementAge:         65,
		LifeExpectancy:        90,
		CurrentSavings:        50000,
		PensionValue:          200000,
		InvestmentValue:       100000,
		CurrentIncome:         40000,
		CurrentExpenses:       35000,
		StatePensionAge:       67,
		StatePensionAmount:    11500,
		InflationRate:         0.02,
		RealEquityReturn:      0.05,
		RealBondReturn:        0.02,
		RealCashReturn:        0.005,
		EquityAllocation:      0.5,
		BondAllocation:        0.25,
		CashAllocation:        0.15,
		AlternativeAllocation: 0.1,
	}
}

func TestValidateOK(t *testing.T) {
	s := validScenario()
	msgs := s.Validate()
	if HasCritical(msgs) {
		t.Fatalf("expected no critical messages, got %+v", msgs)
	}
	if err := s.ValidationErr(); err != nil {
		t.Fatalf("expected nil validation error, got %v", err)
	}
}

func TestValidateRetirementAfterLifeExpectancy(t *testing.T) {
	s := validScenario()
	s.RetirementAge = 95
	msgs := s.Validate()
	if !hasCode(msgs, "RETIREMENT_AFTER_LIFE_EXPECTANCY") {
		t.Fatalf("expected RETIREMENT_AFTER_LIFE_EXPECTANCY, got %+v", msgs)
	}
}

func TestValidateHorizonTooShort(t *testing.T) {
	s := validScenario()
	s.ProjectionYears = 10
	msgs := s.Validate()
	if !hasCode(msgs, "PROJECTION_HORIZON_TOO_SHORT") {
		t.Fatalf("expected PROJECTION_HORIZON_TOO_SHORT, got %+v", msgs)
	}
}

func TestValidateAllocationSum(t *testing.T) {
	s := validScenario()
	s.CashAllocation = 0.3
	msgs := s.Validate()
	if !hasCode(msgs, "ALLOCATION_SUM_INVALID") {
		t.Fatalf("expected ALLOCATION_SUM_INVALID, got %+v", msgs)
	}
	if err := s.ValidationErr(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateNaNAllocation(t *testing.T) {
	s := validScenario()
	s.EquityAllocation = math.NaN()
	msgs := s.Validate()
	if !hasCode(msgs, "INVALID_ALLOCATION") {
		t.Fatalf("expected INVALID_ALLOCATION for NaN equity allocation, got %+v", msgs)
	}
	if err := s.ValidationErr(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateAllocationOutOfRange(t *testing.T) {
	// Sums to 1.0 but individual fractions are out of range.
	s := validScenario()
	s.EquityAllocation = 1.5
	s.BondAllocation = -0.5
	s.CashAllocation = 0
	s.AlternativeAllocation = 0
	msgs := s.Validate()
	if !hasCode(msgs, "INVALID_ALLOCATION") {
		t.Fatalf("expected INVALID_ALLOCATION, got %+v", msgs)
	}
	if hasCode(msgs, "ALLOCATION_SUM_INVALID") {
		t.Fatalf("sum check should not fire when individual allocations are invalid: %+v", msgs)
	}

	s = validScenario()
	s.CashAllocation = math.Inf(1)
	if !hasCode(s.Validate(), "INVALID_ALLOCATION") {
		t.Fatal("expected INVALID_ALLOCATION for infinite cash allocation")
	}
}

func TestValidateUnknownScenarioType(t *testing.T) {
	s := validScenario()
	s.ScenarioType = "hopeful"
	if !hasCode(s.Validate(), "INVALID_SCENARIO_TYPE") {
		t.Fatal("expected INVALID_SCENARIO_TYPE")
	}
}

func TestValidateNegativeAmount(t *testing.T) {
	s := validScenario()
	s.PensionValue = -1
	if !hasCode(s.Validate(), "INVALID_AMOUNT") {
		t.Fatal("expected INVALID_AMOUNT")
	}
}

func TestValidateRetirementInPastIsWarning(t *testing.T) {
	s := validScenario()
	s.RetirementAge = 58
	msgs := s.Validate()
	if HasCritical(msgs) {
		t.Fatalf("retirement in the past must not be critical: %+v", msgs)
	}
	if !hasCode(msgs, "RETIREMENT_IN_PAST") {
		t.Fatal("expected RETIREMENT_IN_PAST warning")
	}
}

func TestHorizon(t *testing.T) {
	s := validScenario()
	if got := s.Horizon(); got != 30 {
		t.Fatalf("expected horizon 30, got %d", got)
	}

	s.ProjectionYears = 0
	if got := s.Horizon(); got != 0 {
		t.Fatalf("expected horizon 0, got %d", got)
	}

	s = validScenario()
	s.LifeExpectancy = 55
	if got := s.Horizon(); got != 0 {
		t.Fatalf("expected horizon 0 past life expectancy, got %d", got)
	}
}

func TestRatingScores(t *testing.T) {
	cases := map[string]int{
		RatingExcellent: 90,
		RatingGood:      75,
		RatingAdequate:  55,
		RatingPoor:      35,
		RatingCritical:  15,
		"bogus":         0,
	}
	for rating, want := range cases {
		if got := RatingScore(rating); got != want {
			t.Fatalf("RatingScore(%s) = %d, want %d", rating, got, want)
		}
	}
}

func hasCode(msgs []CalculationMessage, code string) bool {
	for _, m := range msgs {
		if m.Code == code {
			return true
		}
	}
	return false
}
