package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/bonder-network/bonder/rpc/types"
	"github.com/bonder-network/bonder/store"
	"github.com/ethereum/go-ethereum/common"
)

// ClientInterface is the interface that defines the implementation of all the endpoints
type ClientInterface interface {
	Credit(token string, sourceChainID, destChainID uint64) (*types.Credit, error)
	Transfer(token string, transferID common.Hash) (*store.Transfer, error)
	TransferRoot(token string, rootHash common.Hash) (*store.TransferRoot, error)
	Transfers(token string, from, to uint64) ([]*store.Transfer, error)
	TransferRoots(token string, from, to uint64) ([]*store.TransferRoot, error)
	GasCost(token string, chain string, attemptSwap bool) (*store.GasCost, error)
}

// ClientFactoryInterface interface for the client factory
type ClientFactoryInterface interface {
	NewClient(url string) ClientInterface
}

// ClientFactory is the implementation of the bonder client factory
type ClientFactory struct{}

// NewClient returns an implementation of the bonder node client
func (f *ClientFactory) NewClient(url string) ClientInterface {
	return NewClient(url)
}

// Client wraps all the available endpoints of the bonder node server
type Client struct {
	url string
}

// NewClient returns a client ready to be used
func NewClient(url string) *Client {
	return &Client{
		url: url,
	}
}

// Credit returns the liquidity of the bonder on a route
func (c *Client) Credit(token string, sourceChainID, destChainID uint64) (*types.Credit, error) {
	var result types.Credit
	return &result, c.call(&result, "bonder_credit", token, sourceChainID, destChainID)
}

// Transfer returns the stored state of a transfer
func (c *Client) Transfer(token string, transferID common.Hash) (*store.Transfer, error) {
	var result store.Transfer
	return &result, c.call(&result, "bonder_transfer", token, transferID)
}

// TransferRoot returns the stored state of a transfer root
func (c *Client) TransferRoot(token string, rootHash common.Hash) (*store.TransferRoot, error) {
	var result store.TransferRoot
	return &result, c.call(&result, "bonder_transferRoot", token, rootHash)
}

// Transfers returns the transfers sent between the unix timestamps from and to
func (c *Client) Transfers(token string, from, to uint64) ([]*store.Transfer, error) {
	var result []*store.Transfer
	if err := c.call(&result, "bonder_transfers", token, from, to); err != nil {
		return nil, err
	}
	return result, nil
}

// TransferRoots returns the transfer roots committed between the unix timestamps from and to
func (c *Client) TransferRoots(token string, from, to uint64) ([]*store.TransferRoot, error) {
	var result []*store.TransferRoot
	if err := c.call(&result, "bonder_transferRoots", token, from, to); err != nil {
		return nil, err
	}
	return result, nil
}

// GasCost returns the latest bond gas estimation of a token on a chain
func (c *Client) GasCost(token string, chain string, attemptSwap bool) (*store.GasCost, error) {
	var result store.GasCost
	return &result, c.call(&result, "bonder_gasCost", token, chain, attemptSwap)
}

func (c *Client) call(result interface{}, method string, params ...interface{}) error {
	response, err := rpc.JSONRPCCall(c.url, method, params...)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return json.Unmarshal(response.Result, result)
}
