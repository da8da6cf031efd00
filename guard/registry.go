package guard

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgelabs-io/riskguard/types"
)

// registry tracks the guard's administrative owner, its controller and
// the protected ledger components it gates. It carries no lock of its
// own; the owning Guard's mutex guards every access.
type registry struct {
	owner      common.Address
	controller common.Address

	bridge common.Address
	bank   common.Address
	vault  common.Address
}

// roleOf resolves the caller's role once per call. Entry points state
// their requirement against roles, never against raw addresses.
func (r *registry) roleOf(addr common.Address) types.Role {
	switch {
	case addr == (common.Address{}):
		return types.RoleNone
	case addr == r.owner:
		return types.RoleOwner
	case addr == r.controller:
		return types.RoleController
	default:
		return types.RoleNone
	}
}

// require rejects the caller unless it holds one of the given roles.
func (r *registry) require(caller common.Address, roles ...types.Role) error {
	have := r.roleOf(caller)
	for _, want := range roles {
		if have == want {
			return nil
		}
	}

	return ErrUnauthorized.Wrapf("caller %s has role %s", caller.Hex(), have)
}
