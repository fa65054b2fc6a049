// Package robot describes the elevator and wrist superstructure: actuator
// addressing, motor controller presets, joint tuning and physical dimensions.
package robot

import (
	"sort"

	"github.com/pkg/errors"
)

// Role identifies an actuator in the superstructure.
type Role string

// Actuator roles.
const (
	ElevatorPrimary  Role = "elevator"
	ElevatorFollower Role = "elevator_follower"
	Wrist            Role = "wrist"
	Take             Role = "take"
)

// AllRoles returns all actuator roles in bus order.
func AllRoles() []Role {
	return []Role{
		ElevatorPrimary,
		ElevatorFollower,
		Wrist,
		Take,
	}
}

// ActuatorID is the CAN id of a motor controller on the shared bus.
type ActuatorID int

// Highest id a motor controller accepts.
const maxActuatorID = 62

// DefaultActuatorIDs returns the production CAN ids.
func DefaultActuatorIDs() map[Role]ActuatorID {
	return map[Role]ActuatorID{
		ElevatorPrimary:  9,
		ElevatorFollower: 10,
		Wrist:            11,
		Take:             12,
	}
}

// Registry maps roles to actuator ids. It is filled once and never mutated.
type Registry struct {
	ids map[Role]ActuatorID
}

// NewRegistry validates and copies ids. Ids must be unique and in bus range.
func NewRegistry(ids map[Role]ActuatorID) (*Registry, error) {
	if len(ids) == 0 {
		return nil, invalid("registry", "no actuators registered")
	}

	owners := make(map[ActuatorID]Role, len(ids))
	copied := make(map[Role]ActuatorID, len(ids))
	for _, role := range sortedRoles(ids) {
		id := ids[role]
		if role == "" {
			return nil, invalid("registry", "empty role for id %d", id)
		}
		if id < 0 || id > maxActuatorID {
			return nil, invalid("registry", "%s: id %d outside [0, %d]", role, id, maxActuatorID)
		}
		if other, ok := owners[id]; ok {
			return nil, invalid("registry", "id %d assigned to both %s and %s", id, other, role)
		}
		owners[id] = role
		copied[role] = id
	}

	return &Registry{ids: copied}, nil
}

// Resolve returns the actuator id registered for role.
func (r *Registry) Resolve(role Role) (ActuatorID, error) {
	id, ok := r.ids[role]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownRole, "resolve %q", role)
	}
	return id, nil
}

// ByID returns the role owning id.
func (r *Registry) ByID(id ActuatorID) (Role, bool) {
	for role, rid := range r.ids {
		if rid == id {
			return role, true
		}
	}
	return "", false
}

// Roles returns the registered roles, known roles first in bus order.
func (r *Registry) Roles() []Role {
	return sortedRoles(r.ids)
}

// IDs returns the registered ids in the order of Roles.
func (r *Registry) IDs() []ActuatorID {
	roles := r.Roles()
	ids := make([]ActuatorID, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, r.ids[role])
	}
	return ids
}

func sortedRoles(ids map[Role]ActuatorID) []Role {
	rank := make(map[Role]int)
	for i, role := range AllRoles() {
		rank[role] = i
	}

	roles := make([]Role, 0, len(ids))
	for role := range ids {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		ri, iKnown := rank[roles[i]]
		rj, jKnown := rank[roles[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return roles[i] < roles[j]
		}
	})
	return roles
}
