// Package state keeps per-conversation FSM sessions in memory, keyed by
// (user, chat), with idle expiry and per-key serialisation.
package state
