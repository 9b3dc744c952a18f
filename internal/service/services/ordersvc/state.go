package ordersvc

// State is a step of the create-order workflow.
type State string

const (
	StateValidating      State = "validating"
	StateReserving       State = "reserving"
	StatePersisting      State = "persisting"
	StateNotifying       State = "notifying"
	StateCompleted       State = "completed"
	StateRejectedInvalid State = "rejected_invalid"
	StateRejectedStock   State = "rejected_stock"
	StateFailed          State = "failed"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateRejectedInvalid, StateRejectedStock, StateFailed:
		return true
	default:
		return false
	}
}
