package splay

import "errors"

var (
	// ErrBadNode indicates a Node that is nil, freed, or from another forest.
	ErrBadNode = errors.New("splay: bad node")

	// ErrSlotTaken indicates an attach to a child slot that is already linked,
	// or of a child that already has a parent.
	ErrSlotTaken = errors.New("splay: child slot already linked")

	// ErrBadHint indicates that an InsertFull hint is stale.
	ErrBadHint = errors.New("splay: stale or invalid insertion hint")
)
