package workflow

// State is the position of a session in the checkout conversation. The set
// is closed: every switch over State in this package handles all members,
// so adding a state forces each site to be revisited.
type State string

const (
	StateIdle           State = "idle"
	StateBrowsing       State = "browsing"
	StateWaitingName    State = "collecting_name"
	StateWaitingPhone   State = "collecting_phone"
	StateWaitingAddress State = "collecting_address"
	StateWaitingPayment State = "collecting_payment"
	StateConfirm        State = "confirming_order"
	StateConfirmed      State = "order_placed"
)

func (s State) String() string {
	return string(s)
}

// ParseState maps a persisted state string back to a State. Unknown or empty
// values degrade to StateIdle so a corrupted session can always recover.
func ParseState(s string) State {
	switch State(s) {
	case StateBrowsing, StateWaitingName, StateWaitingPhone,
		StateWaitingAddress, StateWaitingPayment, StateConfirm, StateConfirmed:
		return State(s)
	default:
		return StateIdle
	}
}

// collecting reports whether the state is in the middle of a checkout flow,
// i.e. the next message is an answer to a prompt rather than a new topic.
func (s State) collecting() bool {
	switch s {
	case StateWaitingName, StateWaitingPhone, StateWaitingAddress,
		StateWaitingPayment, StateConfirm:
		return true
	case StateIdle, StateBrowsing, StateConfirmed:
		return false
	}
	return false
}
