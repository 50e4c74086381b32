// Package web3 houses the EVM-specific helpers used while summarising a
// deployment: named chain definitions and go-ethereum based inspection of
// contract interfaces and addresses.
package web3
