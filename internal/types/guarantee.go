package types

import "fmt"

// GuaranteeStatus is the lifecycle state of a guarantee agreement. Forward
// transitions only; the canonical terminal flow is
// balance_payment_paid -> completed via certificate issuance.
type GuaranteeStatus string

const (
	GuaranteeCreated   GuaranteeStatus = "created"
	GuaranteeApproved  GuaranteeStatus = "guarantee_approved"
	SellerApproved     GuaranteeStatus = "seller_approved"
	CollateralPaid     GuaranteeStatus = "collateral_paid"
	LogisticsNotified  GuaranteeStatus = "logistics_notified"
	LogisticsTakeup    GuaranteeStatus = "logistics_takeup"
	GoodsShipped       GuaranteeStatus = "goods_shipped"
	GoodsDelivered     GuaranteeStatus = "goods_delivered"
	BalancePaymentPaid GuaranteeStatus = "balance_payment_paid"
	// CertificateIssued is a legacy status written by an older two-step
	// workflow variant. New records transition straight to completed.
	CertificateIssued  GuaranteeStatus = "certificate_issued"
	GuaranteeCompleted GuaranteeStatus = "completed"
	// GuaranteeExpired marks a guarantee whose financier vote passed its
	// deadline unresolved and was explicitly closed out.
	GuaranteeExpired GuaranteeStatus = "expired"
)

func (s GuaranteeStatus) ToString() string {
	return string(s)
}

func FromStringToGuaranteeStatus(s string) (GuaranteeStatus, error) {
	switch GuaranteeStatus(s) {
	case GuaranteeCreated, GuaranteeApproved, SellerApproved, CollateralPaid,
		LogisticsNotified, LogisticsTakeup, GoodsShipped, GoodsDelivered,
		BalancePaymentPaid, CertificateIssued, GuaranteeCompleted, GuaranteeExpired:
		return GuaranteeStatus(s), nil
	default:
		return "", fmt.Errorf("invalid guarantee status: %s", s)
	}
}
