package masklog

// Action names carried by LogAction values.
const (
	ActionInbound             = "INBOUND"
	ActionOutbound            = "OUTBOUND"
	ActionDBRequest           = "DB_REQUEST"
	ActionDBResponse          = "DB_RESPONSE"
	ActionException           = "EXCEPTION"
	ActionExternalAPIRequest  = "EXTERNAL_API_REQUEST"
	ActionExternalAPIResponse = "EXTERNAL_API_RESPONSE"
)

// LogAction tags a detail record with what the code was doing. It is purely
// descriptive.
type LogAction struct {
	Action      string
	Description string
	SubAction   string
}

func newAction(action, description string, subAction []string) LogAction {
	a := LogAction{Action: action, Description: description}
	if len(subAction) > 0 {
		a.SubAction = subAction[0]
	}
	return a
}

// Inbound marks a request received by this service.
func Inbound(description string, subAction ...string) LogAction {
	return newAction(ActionInbound, description, subAction)
}

// Outbound marks a response sent by this service.
func Outbound(description string, subAction ...string) LogAction {
	return newAction(ActionOutbound, description, subAction)
}

// DBRequest marks a query sent to a database.
func DBRequest(description string, subAction ...string) LogAction {
	return newAction(ActionDBRequest, description, subAction)
}

// DBResponse marks a database result.
func DBResponse(description string, subAction ...string) LogAction {
	return newAction(ActionDBResponse, description, subAction)
}

// Exception marks an error path.
func Exception(description string, subAction ...string) LogAction {
	return newAction(ActionException, description, subAction)
}

// ExternalAPIRequest marks a call to another service.
func ExternalAPIRequest(description string, subAction ...string) LogAction {
	return newAction(ActionExternalAPIRequest, description, subAction)
}

// ExternalAPIResponse marks the reply from another service.
func ExternalAPIResponse(description string, subAction ...string) LogAction {
	return newAction(ActionExternalAPIResponse, description, subAction)
}

// Custom builds an action with an arbitrary name.
func Custom(action, description string, subAction ...string) LogAction {
	return newAction(action, description, subAction)
}
