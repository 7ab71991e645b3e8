package models

// NoNetworkFound is what the shell displays when no candidate is selectable.
const NoNetworkFound = "no wifi found"

// NetworkSelection is the displayed network/secret pair.
type NetworkSelection struct {
	SSID       string
	Password   string
	Known      bool
	Index      int
	Candidates int
}

// Empty reports whether no candidate is selected.
func (n NetworkSelection) Empty() bool {
	return n.Candidates == 0
}

// Credential is a network identifier and its secret.
type Credential struct {
	NetworkID string
	Secret    string
}
