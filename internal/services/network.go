package services

import (
	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
	"github.com/blinky-companion/sync-agent/pkg/candidates"
)

// CredentialStore is the subset of the encrypted credential store the
// services need.
type CredentialStore interface {
	Lookup(networkID string) (string, bool)
	Write(networkID, secret string) error
	NetworkIDs() []string
	Degraded() bool
}

// NetworkService pairs the scan candidates with the stored secrets to produce
// the network selection shown to the user.
type NetworkService struct {
	cycler *candidates.Cycler
	store  CredentialStore
}

func NewNetworkService(cycler *candidates.Cycler, store CredentialStore) *NetworkService {
	return &NetworkService{cycler: cycler, store: store}
}

// ReplaceCandidates installs a scan result, in the order the scanner
// reported it, and returns the resulting selection.
func (n *NetworkService) ReplaceCandidates(ssids []string) models.NetworkSelection {
	n.cycler.Replace(ssids)
	zap.S().Named("networks").Debugw("scan result received", "candidates", len(ssids))
	return n.Current()
}

// Next shows the following candidate. Only meaningful with more than one
// candidate; otherwise the selection is unchanged.
func (n *NetworkService) Next() models.NetworkSelection {
	n.cycler.Advance()
	return n.Current()
}

func (n *NetworkService) Current() models.NetworkSelection {
	ssid, index, total := n.cycler.Snapshot()
	if total == 0 {
		return models.NetworkSelection{}
	}

	sel := models.NetworkSelection{SSID: ssid, Index: index, Candidates: total}
	sel.Password, sel.Known = n.store.Lookup(ssid)
	return sel
}

func (n *NetworkService) Lookup(ssid string) (string, bool) {
	return n.store.Lookup(ssid)
}

func (n *NetworkService) SaveCredential(ssid, password string) error {
	return n.store.Write(ssid, password)
}

// KnownNetworks returns the ids that have a stored secret. Secrets are never
// returned here.
func (n *NetworkService) KnownNetworks() []string {
	return n.store.NetworkIDs()
}

func (n *NetworkService) Persistent() bool {
	return !n.store.Degraded()
}
