// Package service implements the application operations over the
// ledger: bill and expense lifecycle, the settlement workflow, and the
// cross-bill summary. Authorization derives from bill creatorship and
// event membership supplied by an external EventDirectory.
package service

import "context"

// EventDirectory is the collaborator interface to the external event
// system. Events group bills; membership and finalization live outside
// this core.
type EventDirectory interface {
	// IsFinalized reports whether the event's schedule is locked in.
	// Bill creation is gated on this.
	IsFinalized(ctx context.Context, eventID string) (bool, error)

	// IsMember reports whether the user participates in the event.
	IsMember(ctx context.Context, eventID, userID string) (bool, error)

	// IsOwner reports whether the user created the event.
	IsOwner(ctx context.Context, eventID, userID string) (bool, error)

	// EventsFor returns the IDs of all events the user belongs to. The
	// summary fan-out uses it to find bills the user has never opened.
	EventsFor(ctx context.Context, userID string) ([]string, error)
}

// OpenEvents is an EventDirectory for deployments where event gating
// happens upstream: every event is finalized and every authenticated
// user is a member, but nobody is an event owner and no events are
// enumerated. Access then reduces to bill creatorship and explicit
// participation.
type OpenEvents struct{}

func (OpenEvents) IsFinalized(context.Context, string) (bool, error) { return true, nil }

func (OpenEvents) IsMember(context.Context, string, string) (bool, error) { return true, nil }

func (OpenEvents) IsOwner(context.Context, string, string) (bool, error) { return false, nil }

func (OpenEvents) EventsFor(context.Context, string) ([]string, error) { return nil, nil }
