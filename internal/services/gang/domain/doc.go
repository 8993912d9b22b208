// Package domain holds the gang service's core types and rules: gangs and
// their rosters, territory control, wars, and mission attempts. Everything
// here is pure state and validation; persistence and transactions live in
// the storage layer.
package domain
