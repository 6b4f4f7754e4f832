// Package fsm is a minimal cooperative state machine: one active [State] per
// [Machine], Enter on transition and Execute on each tick.
package fsm
