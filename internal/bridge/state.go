package bridge

// State is the orchestration state. Only the serving loop changes it.
type State uint32

const (
	StateAwaitAPIVersion State = iota
	StateAwaitSSID
	StateAwaitPassword
	StateRadioInit
	StateRadioConnecting
	StateServing
)

var allStates = []State{
	StateAwaitAPIVersion,
	StateAwaitSSID,
	StateAwaitPassword,
	StateRadioInit,
	StateRadioConnecting,
	StateServing,
}

func (s State) String() string {
	switch s {
	case StateAwaitAPIVersion:
		return "await_api_version"
	case StateAwaitSSID:
		return "await_ssid"
	case StateAwaitPassword:
		return "await_password"
	case StateRadioInit:
		return "radio_init"
	case StateRadioConnecting:
		return "radio_connecting"
	case StateServing:
		return "serving"
	default:
		return "unknown"
	}
}
