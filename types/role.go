package types

// Role is the privilege level resolved for a caller before any guarded
// operation runs. Authorization checks compare against roles rather than
// raw addresses so each entry point states its requirement once.
type Role uint8

const (
	RoleNone Role = iota
	// RoleOwner is the administrative owner who configures limits and
	// appoints the controller.
	RoleOwner
	// RoleController is the address permitted to call the real-time mint
	// authorization path.
	RoleController
	// RoleGovernance is the timelock governance pointer, permitted to
	// begin and finalize delayed updates.
	RoleGovernance
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleController:
		return "controller"
	case RoleGovernance:
		return "governance"
	default:
		return "none"
	}
}
