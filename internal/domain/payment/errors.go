package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentFinalized is returned when a status change is attempted on a PAID or FAILED payment.
	ErrPaymentFinalized = errors.New("payment already finalized")
	// ErrDuplicateExternalID is returned by repositories when (source, external_id) already exists.
	ErrDuplicateExternalID = errors.New("payment external id already recorded")
)

// ErrVersionConflict is returned by repositories when another writer updated the row first.
var ErrVersionConflict = errors.New("payment version conflict")
