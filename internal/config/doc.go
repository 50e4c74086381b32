// Package config loads the JSON configuration for parsedeploy: the Foundry
// project layout, which transaction types count as contract creation, the
// logger settings and the optional summary sinks. Every field has a default
// matching the core-evm-contracts Foundry layout, so running without a file works.
package config
