package rbtree

import "errors"

var (
	// ErrBadNode indicates a Node that is Nil, removed, or from another tree.
	ErrBadNode = errors.New("rbtree: bad node")

	// ErrSlotTaken indicates an InsertAt into a child slot, or an empty-tree
	// root, that is already occupied.
	ErrSlotTaken = errors.New("rbtree: insertion slot already occupied")
)
