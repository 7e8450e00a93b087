package simulation

import "fmt"

// Day advance steps, in execution order
const (
	StepReceiveMaterials   = "receive_materials"
	StepProgressProduction = "progress_production"
	StepGenerateDemand     = "generate_demand"
	StepOperationalCost    = "operational_cost"
	StepAdvanceClock       = "advance_clock"
	StepVerifyInvariants   = "verify_invariants"
)

// DayAdvanceError reports the step at which a day advance failed.
// The engine has been rolled back to the state before the call.
type DayAdvanceError struct {
	Step string
	Day  int
	Err  error
}

func (e *DayAdvanceError) Error() string {
	return fmt.Sprintf("advance to day %d failed at %s: %v", e.Day, e.Step, e.Err)
}

func (e *DayAdvanceError) Unwrap() error {
	return e.Err
}
