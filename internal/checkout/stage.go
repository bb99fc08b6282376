package checkout

// Stage is a step of the checkout wizard.
type Stage string

const (
	StageIdentity Stage = "identity"
	StageDelivery Stage = "delivery"
	StageConfirm  Stage = "confirm"
	StageSuccess  Stage = "success"
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	return string(s)
}

// next lists the only forward transition out of each stage. Forward moves
// are gated by that stage's validation.
var next = map[Stage]Stage{
	StageIdentity: StageDelivery,
	StageDelivery: StageConfirm,
	StageConfirm:  StageSuccess,
}

// previous lists the backward transitions. They never validate.
var previous = map[Stage]Stage{
	StageDelivery: StageIdentity,
	StageConfirm:  StageDelivery,
}

// IsTerminal reports whether the wizard is finished.
func (s Stage) IsTerminal() bool {
	return s == StageSuccess
}
