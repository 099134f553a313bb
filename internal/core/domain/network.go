package domain

import (
	"fmt"
	"strings"
)

// NetworkName is the canonical name of a known Ethereum network.
type NetworkName string

const (
	NetworkMainnet  NetworkName = "mainnet"
	NetworkMorden   NetworkName = "morden"
	NetworkRopsten  NetworkName = "ropsten"
	NetworkRinkeby  NetworkName = "rinkeby"
	NetworkKovan    NetworkName = "kovan"
	NetworkSokol    NetworkName = "sokol"
	NetworkPoa      NetworkName = "poa"
	NetworkGanache  NetworkName = "ganache"
	NetworkMusicoin NetworkName = "musicoin"
)

// networkFlags lists the aliases of each network. The first alias is the network ID.
// Order matters: lookups return the first network with a matching flag.
var networkFlags = []struct {
	name  NetworkName
	flags []string
}{
	{NetworkMainnet, []string{"1", "mainnet", "main", "live", "frontier", "homestead", "home", "metropolis"}},
	{NetworkMorden, []string{"2", "morden"}},
	{NetworkRopsten, []string{"3", "ropsten"}},
	{NetworkRinkeby, []string{"4", "rinkeby"}},
	{NetworkKovan, []string{"42", "kovan"}},
	{NetworkSokol, []string{"77", "sokol"}},
	{NetworkPoa, []string{"99", "poa"}},
	{NetworkGanache, []string{"5777", "4447", "ganache", "test"}},
	{NetworkMusicoin, []string{"7762959", "musicoin", "mosicoin"}},
}

// Network identifies a known network.
type Network struct {
	Name NetworkName
	ID   string
}

// ParseNetwork resolves a network identifier such as "main", "3" or "dev_ropsten".
// Identifiers are split on "_" and each part is matched case-insensitively.
func ParseNetwork(s string) (Network, error) {
	parts := strings.Split(strings.ToLower(s), "_")
	for _, n := range networkFlags {
		if containsAny(parts, n.flags) {
			return Network{Name: n.name, ID: n.flags[0]}, nil
		}
	}
	return Network{}, fmt.Errorf("unknown network %q", s)
}

// IsMainnet reports whether s carries any mainnet flag.
func IsMainnet(s string) bool {
	n, err := ParseNetwork(s)
	return err == nil && n.Name == NetworkMainnet
}

func containsAny(parts, flags []string) bool {
	for _, f := range flags {
		for _, p := range parts {
			if p == f {
				return true
			}
		}
	}
	return false
}
