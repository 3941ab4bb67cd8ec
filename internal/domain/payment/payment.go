package payment

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/domain/payment/valueobjects"
)

// Payment is one ledger entry for a billing attempt. Cycles are recorded as new
// rows; a row never changes status once it leaves PENDING, although metadata may still be appended.
type Payment struct {
	id             uint
	userID         uint
	subscriptionID *uint
	source         vo.Source
	externalID     string
	planExternalID string
	status         vo.PaymentStatus
	amount         vo.Money
	paymentLink    *string
	description    *string
	failureReason  *string
	paidAt         *time.Time
	metadata       []MetadataEntry
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewPlanPayment records the pending payment request that opens a recurring plan.
func NewPlanPayment(userID, subscriptionID uint, externalID string, amount vo.Money, paymentLink string, now time.Time) (*Payment, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	p, err := newPayment(userID, vo.SourcePlan, externalID, amount, now)
	if err != nil {
		return nil, err
	}
	p.subscriptionID = &subscriptionID
	p.planExternalID = externalID
	if paymentLink != "" {
		p.paymentLink = &paymentLink
	}
	return p, nil
}

// NewCyclePayment records one recurring cycle of the plan identified by planExternalID.
// status is the outcome the provider reported; failureReason is only kept for FAILED rows.
func NewCyclePayment(
	userID, subscriptionID uint,
	cycleID, planExternalID string,
	amount vo.Money,
	status vo.PaymentStatus,
	failureReason string,
	now time.Time,
) (*Payment, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if strings.TrimSpace(planExternalID) == "" {
		return nil, fmt.Errorf("plan external ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", status)
	}

	p, err := newPayment(userID, vo.CycleSourceFor(status), cycleID, amount, now)
	if err != nil {
		return nil, err
	}
	p.subscriptionID = &subscriptionID
	p.planExternalID = planExternalID
	p.status = status

	switch status {
	case vo.PaymentStatusPaid:
		p.paidAt = &now
	case vo.PaymentStatusFailed:
		if failureReason == "" {
			failureReason = "unknown"
		}
		p.failureReason = &failureReason
	}
	return p, nil
}

// NewInvoicePayment records a one-time invoice that belongs to no subscription.
func NewInvoicePayment(userID uint, externalID string, amount vo.Money, invoiceURL, description string, now time.Time) (*Payment, error) {
	p, err := newPayment(userID, vo.SourceInvoice, externalID, amount, now)
	if err != nil {
		return nil, err
	}
	if invoiceURL != "" {
		p.paymentLink = &invoiceURL
	}
	if description != "" {
		p.description = &description
	}
	return p, nil
}

func newPayment(userID uint, source vo.Source, externalID string, amount vo.Money, now time.Time) (*Payment, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, fmt.Errorf("external ID is required")
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("amount must be positive")
	}

	return &Payment{
		userID:     userID,
		source:     source,
		externalID: externalID,
		status:     vo.PaymentStatusPending,
		amount:     amount,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructPayment reconstructs a payment from persistence
func ReconstructPayment(
	id, userID uint,
	subscriptionID *uint,
	source vo.Source,
	externalID, planExternalID string,
	status vo.PaymentStatus,
	amount vo.Money,
	paymentLink, description, failureReason *string,
	paidAt *time.Time,
	metadata []MetadataEntry,
	version int,
	createdAt, updatedAt time.Time,
) (*Payment, error) {
	if id == 0 {
		return nil, fmt.Errorf("payment ID cannot be zero")
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid payment source: %s", source)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", status)
	}

	return &Payment{
		id:             id,
		userID:         userID,
		subscriptionID: subscriptionID,
		source:         source,
		externalID:     externalID,
		planExternalID: planExternalID,
		status:         status,
		amount:         amount,
		paymentLink:    paymentLink,
		description:    description,
		failureReason:  failureReason,
		paidAt:         paidAt,
		metadata:       metadata,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

// MarkAsPaid moves a PENDING payment to PAID. Marking a PAID payment again is a no-op.
func (p *Payment) MarkAsPaid(now time.Time) error {
	if err := p.transition(vo.PaymentStatusPaid); err != nil || p.status == vo.PaymentStatusPaid {
		return err
	}

	p.status = vo.PaymentStatusPaid
	p.paidAt = &now
	p.touch(now)
	return nil
}

// MarkAsFailed moves a PENDING payment to FAILED.
func (p *Payment) MarkAsFailed(reason string, now time.Time) error {
	if err := p.transition(vo.PaymentStatusFailed); err != nil || p.status == vo.PaymentStatusFailed {
		return err
	}

	p.status = vo.PaymentStatusFailed
	p.failureReason = &reason
	p.touch(now)
	return nil
}

func (p *Payment) transition(next vo.PaymentStatus) error {
	if !p.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: status %s", ErrPaymentFinalized, p.status)
	}
	return nil
}

// AppendMetadata records an enrichment entry. It is allowed in every status.
func (p *Payment) AppendMetadata(event string, data map[string]any, now time.Time) {
	p.metadata = append(p.metadata, MetadataEntry{
		Event:      event,
		RecordedAt: now,
		Data:       data,
	})
	p.touch(now)
}

func (p *Payment) touch(now time.Time) {
	p.updatedAt = now
	p.version++
}

func (p *Payment) ID() uint                  { return p.id }
func (p *Payment) UserID() uint              { return p.userID }
func (p *Payment) SubscriptionID() *uint     { return p.subscriptionID }
func (p *Payment) Source() vo.Source         { return p.source }
func (p *Payment) ExternalID() string        { return p.externalID }
func (p *Payment) PlanExternalID() string    { return p.planExternalID }
func (p *Payment) Status() vo.PaymentStatus  { return p.status }
func (p *Payment) Amount() vo.Money          { return p.amount }
func (p *Payment) PaymentLink() *string      { return p.paymentLink }
func (p *Payment) Description() *string      { return p.description }
func (p *Payment) FailureReason() *string    { return p.failureReason }
func (p *Payment) PaidAt() *time.Time        { return p.paidAt }
func (p *Payment) Metadata() []MetadataEntry { return p.metadata }
func (p *Payment) Version() int              { return p.version }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time      { return p.updatedAt }

// SetID sets the payment ID (only for persistence layer use)
func (p *Payment) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("payment ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("payment ID cannot be zero")
	}
	p.id = id
	return nil
}
