// Package access decides who may act on tickets.
package access

import (
	"errors"

	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// ErrForbidden is returned by gated operations for actors that are not approvers
var ErrForbidden = errors.New("actor is not an approver")

// Policy is the approver allow-list. It is built once at startup and never
// mutated; membership of the actor is evaluated on every call because roles
// can change while a ticket is open.
type Policy struct {
	roleIDs   map[string]struct{}
	userIDs   map[string]struct{}
	roleOrder []string
}

// NewPolicy builds a policy from approver role and user id lists
func NewPolicy(roleIDs, userIDs []string) *Policy {
	p := &Policy{
		roleIDs: make(map[string]struct{}, len(roleIDs)),
		userIDs: make(map[string]struct{}, len(userIDs)),
	}
	for _, id := range roleIDs {
		if _, dup := p.roleIDs[id]; id == "" || dup {
			continue
		}
		p.roleIDs[id] = struct{}{}
		p.roleOrder = append(p.roleOrder, id)
	}
	for _, id := range userIDs {
		if id != "" {
			p.userIDs[id] = struct{}{}
		}
	}
	return p
}

// IsApprover reports whether the member is an administrator, is listed
// individually, or holds any allow-listed role
func (p *Policy) IsApprover(m entity.Member) bool {
	if m.Administrator {
		return true
	}
	if _, ok := p.userIDs[m.ID]; ok {
		return true
	}
	for _, roleID := range m.RoleIDs {
		if _, ok := p.roleIDs[roleID]; ok {
			return true
		}
	}
	return false
}

// ApproverRoleIDs returns the configured approver roles in configuration order
func (p *Policy) ApproverRoleIDs() []string {
	return append([]string(nil), p.roleOrder...)
}
