// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"time"
)

// PrincipalKind tells which account table a principal lives in.
type PrincipalKind string

const (
	KindPrimary PrincipalKind = "primary"
	KindWorker  PrincipalKind = "worker"
)

// Valid reports whether k is one of the known kinds.
func (k PrincipalKind) Valid() bool {
	return k == KindPrimary || k == KindWorker
}

// ParsePrincipalKind converts a wire value into a PrincipalKind.
func ParsePrincipalKind(s string) (PrincipalKind, error) {
	k := PrincipalKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown principal kind %q", s)
	}
	return k, nil
}

// PrincipalRef points at exactly one account of exactly one kind.
// It can only be built through PrimaryRef, WorkerRef or NewPrincipalRef;
// the zero value references nothing.
type PrincipalRef struct {
	kind PrincipalKind
	id   string
}

func PrimaryRef(id string) PrincipalRef { return PrincipalRef{kind: KindPrimary, id: id} }

func WorkerRef(id string) PrincipalRef { return PrincipalRef{kind: KindWorker, id: id} }

// NewPrincipalRef validates kind and id before building a reference.
func NewPrincipalRef(kind PrincipalKind, id string) (PrincipalRef, error) {
	if !kind.Valid() {
		return PrincipalRef{}, fmt.Errorf("unknown principal kind %q", kind)
	}
	if id == "" {
		return PrincipalRef{}, fmt.Errorf("empty %s id", kind)
	}
	return PrincipalRef{kind: kind, id: id}, nil
}

func (r PrincipalRef) Kind() PrincipalKind { return r.kind }
func (r PrincipalRef) ID() string          { return r.id }

// IsZero reports whether r references nothing.
func (r PrincipalRef) IsZero() bool { return r.kind == "" || r.id == "" }

func (r PrincipalRef) String() string {
	if r.IsZero() {
		return "<none>"
	}
	return string(r.kind) + ":" + r.id
}

// Columns returns the (primary_id, worker_id) pair used by the token store.
// Exactly one of them is non-nil for a non-zero ref.
func (r PrincipalRef) Columns() (primaryID, workerID *string) {
	id := r.id
	switch r.kind {
	case KindPrimary:
		return &id, nil
	case KindWorker:
		return nil, &id
	}
	return nil, nil
}

// Role is an authorization role carried in access tokens.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Principal is an account of either kind as loaded from the principal store.
type Principal struct {
	Ref          PrincipalRef
	Username     string
	Email        string
	Roles        []Role
	Active       bool
	PasswordHash []byte
	// OwnerID is the primary account that created a worker. Empty for primaries.
	OwnerID   string
	CreatedAt time.Time
}

// RoleNames flattens Roles for token claims and JSON bodies.
func (p *Principal) RoleNames() []string {
	out := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		out[i] = string(r)
	}
	return out
}

// RolesFromNames is the inverse of RoleNames.
func RolesFromNames(names []string) []Role {
	out := make([]Role, len(names))
	for i, n := range names {
		out[i] = Role(n)
	}
	return out
}
