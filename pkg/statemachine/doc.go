// Package statemachine provides a small, generic finite-state-machine.
//
// A Definition is an immutable transition table keyed by comparable state and
// event types. Each transition may carry guards, which must all pass, and actions,
// which run in order before the state changes. Any action error aborts the transition.
//
// Definitions are evaluated statelessly with Next, which suits workflows whose
// current state lives in a database or cache. Machine wraps a Definition with a
// mutex-guarded current state for in-process use.
//
//	type State string
//	type Event string
//
//	def := statemachine.MustDefinition[State, Event]("draft",
//	    statemachine.WithTransition[State, Event]("draft", "review", "submit"),
//	    statemachine.WithTransition[State, Event]("review", "published", "approve",
//	        statemachine.WithGuard[State, Event](isEditor),
//	    ),
//	)
//
//	next, err := def.Next(ctx, "draft", "submit", nil) // "review"
//
// Errors distinguish an undefined transition (IsNoTransitionAvailableError) from
// one blocked by guards (IsTransitionRejectedError).
package statemachine
