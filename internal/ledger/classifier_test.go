package ledger_test

import (
	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classifier", func() {
	ownerID := int64(7)

	direct := &ledger.Payment{PayerID: userA, EntrantID: userA, Kind: ledgerDatamodel.KindPaypal, Amount: dec("10.00")}
	onBehalf := &ledger.Payment{PayerID: userA, EntrantID: adminID, Kind: ledgerDatamodel.KindCheck, Amount: dec("5.00")}
	selfReinvested := &ledger.Payment{PayerID: userA, EntrantID: userA, Kind: ledgerDatamodel.KindReinvestment, Amount: dec("3.00")}
	derived := &ledger.Payment{PayerID: userB, EntrantID: adminID, Kind: ledgerDatamodel.KindReinvestment, Amount: dec("2.00"), AdminReinvestmentID: &ownerID}

	DescribeTable("IsOrganic",
		func(p *ledger.Payment, expected bool) {
			Expect(ledger.IsOrganic(p)).To(Equal(expected))
		},
		Entry("entered by the payer", direct, true),
		Entry("entered on the payer's behalf", onBehalf, false),
		Entry("reinvestment entered by the payer", selfReinvested, false),
		Entry("admin reinvestment", derived, false),
	)

	DescribeTable("IsAdminOriginated",
		func(p *ledger.Payment, expected bool) {
			Expect(ledger.IsAdminOriginated(p)).To(Equal(expected))
		},
		Entry("entered by the payer", direct, false),
		Entry("entered on the payer's behalf", onBehalf, true),
		Entry("reinvestment entered by the payer", selfReinvested, false),
		Entry("admin reinvestment", derived, true),
	)

	It("should total organic contributions per payer", func() {
		extra := &ledger.Payment{PayerID: userA, EntrantID: userA, Kind: ledgerDatamodel.KindCredit, Amount: dec("2.50")}
		other := &ledger.Payment{PayerID: userB, EntrantID: userB, Kind: ledgerDatamodel.KindPaypal, Amount: dec("1.00")}

		totals := ledger.ContributionsByPayer([]*ledger.Payment{direct, onBehalf, selfReinvested, derived, extra, other})
		Expect(fixedShares(totals)).To(Equal(map[int64]string{userA: "12.50", userB: "1.00"}))
	})

	It("should sum payments and repayments", func() {
		Expect(ledger.SumPayments([]*ledger.Payment{direct, onBehalf}).StringFixed(ledger.Scale)).To(Equal("15.00"))
		Expect(ledger.SumPayments(nil).IsZero()).To(BeTrue())
		Expect(ledger.SumRepayments([]*ledger.Repayment{{Amount: dec("1.25")}, {Amount: dec("2.75")}}).StringFixed(ledger.Scale)).To(Equal("4.00"))
	})
})
