package payroll

const (
	DeductionIncomeTax      = "ISR"
	DeductionSocialSecurity = "IMSS"

	SourceManual   = "manual"
	SourceComputed = "computed"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Stage is a step of the per-employee assembly.
type Stage string

const (
	StageCollectingInputs   Stage = "collecting_inputs"
	StageSplitting          Stage = "splitting"
	StageComputingStatutory Stage = "computing_statutory"
	StageMerging            Stage = "merging"
	StageComplete           Stage = "complete"
	StageFailed             Stage = "failed"
)
