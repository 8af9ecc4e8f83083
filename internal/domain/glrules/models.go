package glrules

import "time"

type Condition struct {
	Dimension Dimension `json:"dimension"`
	Operator  Operator  `json:"operator"`
	Value     string    `json:"value,omitempty"`
	Values    []string  `json:"values,omitempty"`
}

// Target is the replacement a matching rule applies. Which fields are read depends
// on the rule's OverrideType.
type Target struct {
	DebitAccount  string `json:"debitAccount,omitempty"`
	CreditAccount string `json:"creditAccount,omitempty"`
	SegmentIndex  int    `json:"segmentIndex,omitempty"`
	SegmentValue  string `json:"segmentValue,omitempty"`
	FullString    string `json:"fullString,omitempty"`
}

type Rule struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Priority        int          `json:"priority"`
	OverrideType    OverrideType `json:"overrideType"`
	AppliesToDebit  bool         `json:"appliesToDebit"`
	AppliesToCredit bool         `json:"appliesToCredit"`
	EffectiveFrom   time.Time    `json:"effectiveFrom"`
	EffectiveTo     *time.Time   `json:"effectiveTo,omitempty"`
	Active          bool         `json:"active"`
	Conditions      []Condition  `json:"conditions"`
	Target          Target       `json:"target"`
	Sequence        int64        `json:"sequence"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Line carries the dimension values of one payroll line headed for the ledger.
type Line struct {
	PayElement  string `json:"payElement,omitempty"`
	Department  string `json:"department,omitempty"`
	Division    string `json:"division,omitempty"`
	Location    string `json:"location,omitempty"`
	Job         string `json:"job,omitempty"`
	Employee    string `json:"employee,omitempty"`
	PayGroup    string `json:"payGroup,omitempty"`
	CostCenter  string `json:"costCenter,omitempty"`
	Section     string `json:"section,omitempty"`
	MappingType string `json:"mappingType,omitempty"`
}

func (l Line) Value(d Dimension) string {
	switch d {
	case DimensionPayElement:
		return l.PayElement
	case DimensionDepartment:
		return l.Department
	case DimensionDivision:
		return l.Division
	case DimensionLocation:
		return l.Location
	case DimensionJob:
		return l.Job
	case DimensionEmployee:
		return l.Employee
	case DimensionPayGroup:
		return l.PayGroup
	case DimensionCostCenter:
		return l.CostCenter
	case DimensionSection:
		return l.Section
	case DimensionMappingType:
		return l.MappingType
	}
	return ""
}

// Posting is the account a line ends up on after override resolution.
type Posting struct {
	Account    string `json:"account"`
	Original   string `json:"original"`
	Overridden bool   `json:"overridden"`
	RuleID     string `json:"ruleId,omitempty"`
	RuleName   string `json:"ruleName,omitempty"`
	// Error is set when the matching rule could not be applied to this entry.
	Error string `json:"error,omitempty"`
}
