package utils

import (
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

// QualifiedStatesToGuaranteeApproved returns the qualified existing states to
// transition to "guarantee_approved" via the financier vote.
func QualifiedStatesToGuaranteeApproved() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.GuaranteeCreated}
}

// QualifiedStatesToSellerApproved returns the qualified existing states to transition to "seller_approved"
func QualifiedStatesToSellerApproved() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.GuaranteeApproved}
}

// QualifiedStatesToCollateralPaid returns the qualified existing states to transition to "collateral_paid"
func QualifiedStatesToCollateralPaid() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.SellerApproved}
}

// QualifiedStatesToLogisticsNotified returns the qualified existing states to
// transition to "logistics_notified" via the issuance fee payment.
func QualifiedStatesToLogisticsNotified() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.CollateralPaid}
}

// QualifiedStatesToLogisticsTakeup returns the qualified existing states for a
// logistics partner to claim the shipment job.
func QualifiedStatesToLogisticsTakeup() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.LogisticsNotified}
}

// QualifiedStatesToGoodsShipped returns the qualified existing states to transition to "goods_shipped"
func QualifiedStatesToGoodsShipped() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.LogisticsTakeup}
}

// QualifiedStatesToGoodsDelivered returns the qualified existing states to transition to "goods_delivered"
func QualifiedStatesToGoodsDelivered() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.GoodsShipped}
}

// QualifiedStatesToBalancePaymentPaid returns the qualified existing states to transition to "balance_payment_paid"
func QualifiedStatesToBalancePaymentPaid() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.GoodsDelivered}
}

// QualifiedStatesToCompleted returns the qualified existing states to complete
// the guarantee via certificate issuance. The legacy certificate_issued value
// is accepted so records parked by the older two-step variant can still close.
func QualifiedStatesToCompleted() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.BalancePaymentPaid, types.CertificateIssued}
}

// QualifiedStatesToExpired returns the qualified existing states to close out a
// guarantee whose financier vote missed its deadline.
func QualifiedStatesToExpired() []types.GuaranteeStatus {
	return []types.GuaranteeStatus{types.GuaranteeCreated}
}
