package model

// CashFlowProjection is one simulated year of a scenario.
type CashFlowProjection struct {
	ScenarioID string `json:"scenario_id,omitempty"`
	Year       int    `json:"year"`
	Age        int    `json:"age"`

	EmploymentIncome   float64 `json:"employment_income"`
	PensionIncome      float64 `json:"pension_income"`
	StatePensionIncome float64 `json:"state_pension_income"`
	InvestmentIncome   float64 `json:"investment_income"`
	OtherIncome        float64 `json:"other_income"`

	EssentialExpenses     float64 `json:"essential_expenses"`
	LifestyleExpenses     float64 `json:"lifestyle_expenses"`
	DiscretionaryExpenses float64 `json:"discretionary_expenses"`

	PensionPot          float64 `json:"pension_pot"`
	InvestmentPortfolio float64 `json:"investment_portfolio"`
	CashSavings         float64 `json:"cash_savings"`

	TotalIncome          float64 `json:"total_income"`
	TotalExpenses        float64 `json:"total_expenses"`
	TotalAssets          float64 `json:"total_assets"`
	AnnualSurplusDeficit float64 `json:"annual_surplus_deficit"`

	SustainabilityRatio float64 `json:"sustainability_ratio"`

	// Depleted is set on the year total assets first reach zero and on
	// every subsequent year; depletion is a recorded state transition,
	// not an error.
	Depleted bool `json:"depleted"`
}
