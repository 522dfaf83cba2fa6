/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import "sync/atomic"

// state models the controller's state machine: created -> bound ->
// accepting -> stopping -> closed. closed is terminal.
type state int32

const (
	stateCreated state = iota
	stateBound
	stateAccepting
	stateStopping
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateBound:
		return "bound"
	case stateAccepting:
		return "accepting"
	case stateStopping:
		return "stopping"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// lifecycle is a small atomic state holder shared between the accept loop
// and Stop. Transitions are one-directional; set is not itself exclusive
// (callers decide when a transition is legal) but is always observed
// atomically by readers.
type lifecycle struct {
	v atomic.Int32
}

func (l *lifecycle) set(s state) { l.v.Store(int32(s)) }
func (l *lifecycle) get() state  { return state(l.v.Load()) }
func (l *lifecycle) is(s state) bool { return l.get() == s }
