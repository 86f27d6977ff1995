package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role    enums.AdminRole
		action  Action
		allowed bool
	}{
		{enums.AdminRoleOwner, ActionChangeOrderStatus, true},
		{enums.AdminRoleOwner, ActionSetRefunded, true},
		{enums.AdminRoleOwner, ActionChangePaymentStatus, true},
		{enums.AdminRoleOwner, ActionEditCosts, true},
		{enums.AdminRoleOwner, ActionMarkPaid, true},
		{enums.AdminRoleOwner, ActionRemoveOrder, true},
		{enums.AdminRoleOwner, ActionReadOrders, true},

		{enums.AdminRoleManager, ActionChangeOrderStatus, true},
		{enums.AdminRoleManager, ActionSetRefunded, false},
		{enums.AdminRoleManager, ActionChangePaymentStatus, true},
		{enums.AdminRoleManager, ActionEditCosts, true},
		{enums.AdminRoleManager, ActionMarkPaid, true},
		{enums.AdminRoleManager, ActionRemoveOrder, true},
		{enums.AdminRoleManager, ActionReadOrders, true},

		{enums.AdminRoleSupport, ActionChangeOrderStatus, false},
		{enums.AdminRoleSupport, ActionSetRefunded, false},
		{enums.AdminRoleSupport, ActionChangePaymentStatus, false},
		{enums.AdminRoleSupport, ActionEditCosts, false},
		{enums.AdminRoleSupport, ActionMarkPaid, false},
		{enums.AdminRoleSupport, ActionRemoveOrder, false},
		{enums.AdminRoleSupport, ActionReadOrders, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, Allowed(tc.role, tc.action),
			"%s / %s", tc.role, tc.action)
	}
}

func TestRequireUnknownRoleIsUnauthorized(t *testing.T) {
	err := Require(enums.AdminRole("intern"), ActionReadOrders)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRequireDisallowedRoleIsForbidden(t *testing.T) {
	err := Require(enums.AdminRoleSupport, ActionMarkPaid)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRequireAllowedRole(t *testing.T) {
	assert.NoError(t, Require(enums.AdminRoleManager, ActionMarkPaid))
}

func TestAllowedUnknownAction(t *testing.T) {
	assert.False(t, Allowed(enums.AdminRoleOwner, Action("reboot")))
}
