package types

import (
	"math/big"
)

// Credit is the liquidity of the bonder for a token on a route
type Credit struct {
	Token                      string   `json:"token"`
	SourceChainID              uint64   `json:"sourceChainId"`
	DestinationChainID         uint64   `json:"destinationChainId"`
	AvailableCredit            *big.Int `json:"availableCredit"`
	PendingAmount              *big.Int `json:"pendingAmount"`
	UnbondedTransferRootAmount *big.Int `json:"unbondedTransferRootAmount"`
	// InitialSyncCompleted is false while any watcher of the token is still on its first cycle,
	// the amounts aren't reliable until then
	InitialSyncCompleted bool `json:"initialSyncCompleted"`
}
