package kernel

import "strings"

// AccountID is the opaque resource reference the directory service assigns
// to an account (a full href in practice). It is the only identifier the
// plugin ever persists in a session.
type AccountID string

func NewAccountID(id string) AccountID { return AccountID(id) }
func (a AccountID) String() string     { return string(a) }
func (a AccountID) IsEmpty() bool      { return string(a) == "" }

// GroupRef references a directory group. It may hold a group name or a full
// group href; the directory service accepts both interchangeably.
type GroupRef string

func NewGroupRef(ref string) GroupRef { return GroupRef(ref) }
func (g GroupRef) String() string     { return string(g) }
func (g GroupRef) IsEmpty() bool      { return string(g) == "" }

// IsHref reports whether the reference looks like a resource href rather
// than a plain group name.
func (g GroupRef) IsHref() bool {
	s := string(g)
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// SessionID identifies one server-side session record.
type SessionID string

func NewSessionID(id string) SessionID { return SessionID(id) }
func (s SessionID) String() string     { return string(s) }
func (s SessionID) IsEmpty() bool      { return string(s) == "" }
