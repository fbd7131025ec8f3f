// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package auth

import "fmt"

// # Login Flow

// FlowState is the position of a client in the login lifecycle.
type FlowState string

const (
	// FlowAnonymous is the initial state: no credentials presented.
	FlowAnonymous FlowState = "anonymous"

	// FlowAuthenticating means credentials have been submitted and are
	// being verified.
	FlowAuthenticating FlowState = "authenticating"

	// FlowAuthenticated means a session has been established.
	FlowAuthenticated FlowState = "authenticated"
)

/*
Flow is a small state machine tracking one client's progress through the
login lifecycle.

Transitions:

	anonymous      --Begin-->   authenticating
	authenticating --Succeed--> authenticated
	authenticating --Fail-->    anonymous
	authenticated  --Reset-->   anonymous (logout / session loss)

Every other transition is illegal: a failed attempt can never land in the
authenticated state, and success is only reachable through verification.
*/
type Flow struct {
	state FlowState
}

// NewFlow returns a flow in the anonymous state.
func NewFlow() *Flow {
	return &Flow{state: FlowAnonymous}
}

// State returns the current flow state.
func (flow *Flow) State() FlowState {
	return flow.state
}

// Begin moves the flow from anonymous to authenticating.
func (flow *Flow) Begin() error {
	if flow.state != FlowAnonymous {
		return fmt.Errorf("auth_flow_illegal_transition: begin from %q", flow.state)
	}
	flow.state = FlowAuthenticating
	return nil
}

// Succeed moves the flow from authenticating to authenticated.
func (flow *Flow) Succeed() error {
	if flow.state != FlowAuthenticating {
		return fmt.Errorf("auth_flow_illegal_transition: succeed from %q", flow.state)
	}
	flow.state = FlowAuthenticated
	return nil
}

// Fail returns the flow from authenticating to anonymous.
func (flow *Flow) Fail() error {
	if flow.state != FlowAuthenticating {
		return fmt.Errorf("auth_flow_illegal_transition: fail from %q", flow.state)
	}
	flow.state = FlowAnonymous
	return nil
}

// Reset returns the flow to anonymous from any state. Used on logout and
// when a session is destroyed or expires.
func (flow *Flow) Reset() {
	flow.state = FlowAnonymous
}
