package models

import "fmt"

// ConnectionStateType is the lifecycle phase of the companion device connection.
type ConnectionStateType string

const (
	// ConnectionStateConnecting - link establishment requested
	ConnectionStateConnecting ConnectionStateType = "connecting"
	// ConnectionStateInitializing - link up, discovering services
	ConnectionStateInitializing ConnectionStateType = "initializing"
	// ConnectionStateReady - device can receive a sync payload
	ConnectionStateReady ConnectionStateType = "ready"
	// ConnectionStateDisconnecting - link teardown in progress
	ConnectionStateDisconnecting ConnectionStateType = "disconnecting"
	// ConnectionStateDisconnected - no link, see DisconnectReason
	ConnectionStateDisconnected ConnectionStateType = "disconnected"
)

// DisconnectReason distinguishes an ordinary drop from a device that lacks the
// required service.
type DisconnectReason string

const (
	DisconnectReasonNone        DisconnectReason = ""
	DisconnectReasonOrdinary    DisconnectReason = "ordinary"
	DisconnectReasonUnsupported DisconnectReason = "unsupported"
)

// ConnectionState is owned by the connection coordinator. Reason is only set
// when State is ConnectionStateDisconnected.
type ConnectionState struct {
	State  ConnectionStateType
	Reason DisconnectReason
}

func (s ConnectionState) String() string {
	if s.State == ConnectionStateDisconnected {
		return fmt.Sprintf("%s(%s)", s.State, s.Reason)
	}
	return string(s.State)
}

// IsLost reports whether the state means the device is gone or going.
func (s ConnectionState) IsLost() bool {
	return s.State == ConnectionStateDisconnected || s.State == ConnectionStateDisconnecting
}

func Connecting() ConnectionState    { return ConnectionState{State: ConnectionStateConnecting} }
func Initializing() ConnectionState  { return ConnectionState{State: ConnectionStateInitializing} }
func Ready() ConnectionState         { return ConnectionState{State: ConnectionStateReady} }
func Disconnecting() ConnectionState { return ConnectionState{State: ConnectionStateDisconnecting} }

func Disconnected(unsupported bool) ConnectionState {
	if unsupported {
		return ConnectionState{State: ConnectionStateDisconnected, Reason: DisconnectReasonUnsupported}
	}
	return ConnectionState{State: ConnectionStateDisconnected, Reason: DisconnectReasonOrdinary}
}

// ConnectionEventType is what the transport reports.
type ConnectionEventType string

const (
	ConnectionEventConnecting    ConnectionEventType = "connecting"
	ConnectionEventInitializing  ConnectionEventType = "initializing"
	ConnectionEventReady         ConnectionEventType = "ready"
	ConnectionEventDisconnecting ConnectionEventType = "disconnecting"
	ConnectionEventDisconnected  ConnectionEventType = "disconnected"
)

// ConnectionEvent is delivered by the transport. Unsupported is only meaningful
// for ConnectionEventDisconnected.
type ConnectionEvent struct {
	Type        ConnectionEventType
	DeviceID    string
	Unsupported bool
}

// State maps the event onto the state it moves the coordinator to.
func (e ConnectionEvent) State() (ConnectionState, error) {
	switch e.Type {
	case ConnectionEventConnecting:
		return Connecting(), nil
	case ConnectionEventInitializing:
		return Initializing(), nil
	case ConnectionEventReady:
		return Ready(), nil
	case ConnectionEventDisconnecting:
		return Disconnecting(), nil
	case ConnectionEventDisconnected:
		return Disconnected(e.Unsupported), nil
	default:
		return ConnectionState{}, fmt.Errorf("unknown connection event: %q", e.Type)
	}
}

// NotificationType is emitted by the coordinator for the shell.
type NotificationType string

const (
	NotificationConnectivityLost     NotificationType = "connectivity-lost"
	NotificationConnectivityRestored NotificationType = "connectivity-restored"
)

type Notification struct {
	Type     NotificationType
	State    ConnectionState
	DeviceID string
}

// ConnectionStatus is the read-only view exposed to the shell.
type ConnectionStatus struct {
	State       ConnectionState
	DeviceID    string
	SyncEnabled bool
}
