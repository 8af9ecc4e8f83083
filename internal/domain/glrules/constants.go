package glrules

type Dimension string

const (
	DimensionPayElement  Dimension = "pay_element"
	DimensionDepartment  Dimension = "department"
	DimensionDivision    Dimension = "division"
	DimensionLocation    Dimension = "location"
	DimensionJob         Dimension = "job"
	DimensionEmployee    Dimension = "employee"
	DimensionPayGroup    Dimension = "pay_group"
	DimensionCostCenter  Dimension = "cost_center"
	DimensionSection     Dimension = "section"
	DimensionMappingType Dimension = "mapping_type"
)

var dimensions = map[Dimension]struct{}{
	DimensionPayElement:  {},
	DimensionDepartment:  {},
	DimensionDivision:    {},
	DimensionLocation:    {},
	DimensionJob:         {},
	DimensionEmployee:    {},
	DimensionPayGroup:    {},
	DimensionCostCenter:  {},
	DimensionSection:     {},
	DimensionMappingType: {},
}

func (d Dimension) Valid() bool {
	_, ok := dimensions[d]
	return ok
}

type Operator string

const (
	OperatorEquals    Operator = "equals"
	OperatorNotEquals Operator = "not_equals"
	OperatorIn        Operator = "in"
	OperatorNotIn     Operator = "not_in"
	OperatorAny       Operator = "any"
)

func (o Operator) Valid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorIn, OperatorNotIn, OperatorAny:
		return true
	}
	return false
}

type OverrideType string

const (
	OverrideAccount    OverrideType = "account"
	OverrideSegment    OverrideType = "segment"
	OverrideFullString OverrideType = "full_string"
)

type Polarity string

const (
	Debit  Polarity = "debit"
	Credit Polarity = "credit"
)

func (p Polarity) Valid() bool {
	return p == Debit || p == Credit
}

// SegmentDelimiter separates the segments of a ledger account string.
const SegmentDelimiter = "-"
