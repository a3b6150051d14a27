package task

import "github.com/rs/xid"

// ID uniquely identifies a submitted task wrapper. It is a thin wrapper
// around xid.ID: k-sortable (embeds a timestamp), globally unique without
// coordination, and cheap to generate on every Submit call.
type ID struct{ v xid.ID }

// NewID mints a fresh task identifier.
func NewID() ID { return ID{v: xid.New()} }

func (id ID) String() string { return id.v.String() }

// IsZero reports whether id was never assigned (the zero value).
func (id ID) IsZero() bool { return id.v.IsZero() }
