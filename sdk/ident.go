package sdk

import (
	"strconv"

	"github.com/google/uuid"
)

// Ident names a reply either by its server id or by a local placeholder
// id. The two forms are structurally distinct: a placeholder can never
// be mistaken for a committed row, and code that needs a server id has
// to check first.
type Ident struct {
	ServerId int64  `json:"server_id,omitempty"`
	LocalId  string `json:"local_id,omitempty"`
}

// ServerIdent makes an Ident for a committed server row
func ServerIdent(id int64) Ident {
	return Ident{ServerId: id}
}

// NewLocalIdent makes a fresh placeholder Ident
func NewLocalIdent() Ident {
	return Ident{LocalId: uuid.New().String()}
}

// IsLocal reports whether this is a placeholder
func (i Ident) IsLocal() bool {
	return i.LocalId != ""
}

// IsZero reports whether the Ident names nothing
func (i Ident) IsZero() bool {
	return i.ServerId == 0 && i.LocalId == ""
}

// String renders the Ident for logs and keys
func (i Ident) String() string {
	if i.IsLocal() {
		return "local:" + i.LocalId
	}
	return strconv.FormatInt(i.ServerId, 10)
}

// Less orders Idents for tie-breaking at equal timestamps: committed
// rows sort before placeholders, server ids numerically, placeholders
// by their id string.
func (i Ident) Less(other Ident) bool {
	if i.IsLocal() != other.IsLocal() {
		return !i.IsLocal()
	}
	if i.IsLocal() {
		return i.LocalId < other.LocalId
	}
	return i.ServerId < other.ServerId
}
