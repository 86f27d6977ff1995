package enums

import "fmt"

// AuditAction identifies the kind of administrative mutation recorded
// in the audit log.
type AuditAction string

const (
	AuditActionOrderStatusChanged   AuditAction = "order_status_changed"
	AuditActionPaymentStatusChanged AuditAction = "payment_status_changed"
	AuditActionPaymentMarkedPaid    AuditAction = "payment_marked_paid"
	AuditActionCostsUpdated         AuditAction = "costs_updated"
	AuditActionOrderRemoved         AuditAction = "order_removed"
	AuditActionOrdersExported       AuditAction = "orders_exported"
)

var validAuditActions = []AuditAction{
	AuditActionOrderStatusChanged,
	AuditActionPaymentStatusChanged,
	AuditActionPaymentMarkedPaid,
	AuditActionCostsUpdated,
	AuditActionOrderRemoved,
	AuditActionOrdersExported,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
