package authz

import (
	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
)

// Action names one administrative capability. The table below is the
// single source of truth for role checks; no other enforcement point
// may hardcode roles.
type Action string

const (
	ActionChangeOrderStatus   Action = "change_order_status"
	ActionSetRefunded         Action = "set_refunded"
	ActionChangePaymentStatus Action = "change_payment_status"
	ActionEditCosts           Action = "edit_costs"
	ActionMarkPaid            Action = "mark_paid"
	ActionRemoveOrder         Action = "remove_order"
	ActionReadOrders          Action = "read_orders"
)

var capabilities = map[Action]map[enums.AdminRole]bool{
	ActionChangeOrderStatus: {
		enums.AdminRoleOwner:   true,
		enums.AdminRoleManager: true,
	},
	ActionSetRefunded: {
		enums.AdminRoleOwner: true,
	},
	ActionChangePaymentStatus: {
		enums.AdminRoleOwner:   true,
		enums.AdminRoleManager: true,
	},
	ActionEditCosts: {
		enums.AdminRoleOwner:   true,
		enums.AdminRoleManager: true,
	},
	ActionMarkPaid: {
		enums.AdminRoleOwner:   true,
		enums.AdminRoleManager: true,
	},
	ActionRemoveOrder: {
		enums.AdminRoleOwner:   true,
		enums.AdminRoleManager: true,
	},
	ActionReadOrders: {
		enums.AdminRoleOwner:   true,
		enums.AdminRoleManager: true,
		enums.AdminRoleSupport: true,
	},
}

// Allowed reports whether the role may perform the action.
func Allowed(role enums.AdminRole, action Action) bool {
	allowed, ok := capabilities[action]
	if !ok {
		return false
	}
	return allowed[role]
}

// Require returns a Forbidden error unless the role may perform the action.
func Require(role enums.AdminRole, action Action) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor role missing")
	}
	if !Allowed(role, action) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role not permitted for "+string(action))
	}
	return nil
}
