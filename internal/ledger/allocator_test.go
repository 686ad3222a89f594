package ledger_test

import (
	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func fixedShares(shares map[int64]decimal.Decimal) map[int64]string {
	out := make(map[int64]string, len(shares))
	for id, s := range shares {
		out[id] = s.StringFixed(ledger.Scale)
	}
	return out
}

func sumShares(shares map[int64]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	return sum
}

var _ = Describe("Allocate", func() {
	It("should split in proportion to the contributions", func() {
		shares, err := ledger.Allocate(dec("100.00"), map[int64]decimal.Decimal{
			1: dec("10.00"),
			2: dec("30.00"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(fixedShares(shares)).To(Equal(map[int64]string{1: "25.00", 2: "75.00"}))
	})

	It("should give the rounding residual to the last id", func() {
		shares, err := ledger.Allocate(dec("100.00"), map[int64]decimal.Decimal{
			9: dec("1"),
			4: dec("1"),
			7: dec("1"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(fixedShares(shares)).To(Equal(map[int64]string{4: "33.33", 7: "33.33", 9: "33.34"}))
	})

	It("should stop handing out shares once the total is used up", func() {
		contributions := make(map[int64]decimal.Decimal, 10)
		for id := int64(1); id <= 10; id++ {
			contributions[id] = dec("1")
		}
		shares, err := ledger.Allocate(dec("0.05"), contributions)
		Expect(err).NotTo(HaveOccurred())
		Expect(fixedShares(shares)).To(Equal(map[int64]string{
			1: "0.01", 2: "0.01", 3: "0.01", 4: "0.01", 5: "0.01",
		}))
		Expect(sumShares(shares).StringFixed(ledger.Scale)).To(Equal("0.05"))
	})

	It("should round every share but the last to the nearest cent", func() {
		shares, err := ledger.Allocate(dec("99.99"), map[int64]decimal.Decimal{
			1: dec("0.01"),
			2: dec("12.34"),
			3: dec("56.78"),
			4: dec("0.07"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(fixedShares(shares)).To(Equal(map[int64]string{
			1: "0.01", 2: "17.83", 3: "82.04", 4: "0.11",
		}))
	})

	DescribeTable("should preserve the total exactly",
		func(total string, weights ...string) {
			contributions := make(map[int64]decimal.Decimal, len(weights))
			for i, w := range weights {
				contributions[int64(i+1)] = dec(w)
			}
			shares, err := ledger.Allocate(dec(total), contributions)
			Expect(err).NotTo(HaveOccurred())
			Expect(sumShares(shares).Equal(dec(total))).To(BeTrue())
			for id, s := range shares {
				Expect(s.IsPositive()).To(BeTrue())
				exact := dec(total).Mul(contributions[id]).Div(sumShares(contributions))
				Expect(s.Sub(exact).Abs().LessThanOrEqual(dec("0.01"))).To(BeTrue())
			}
		},
		Entry("thirds", "10.00", "1", "1", "1"),
		Entry("uneven weights", "99.99", "0.01", "12.34", "56.78", "0.07"),
		Entry("single cent", "0.01", "5", "5"),
		Entry("large total", "123456.78", "3.33", "3.33", "3.34"),
		Entry("one beneficiary", "42.42", "7.00"),
	)

	It("should drop shares that round to zero", func() {
		shares, err := ledger.Allocate(dec("0.01"), map[int64]decimal.Decimal{
			1: dec("1.00"),
			2: dec("1.00"),
			3: dec("1.00"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(shares).To(HaveLen(1))
		Expect(sumShares(shares).StringFixed(ledger.Scale)).To(Equal("0.01"))
	})

	It("should skip zero contributions", func() {
		shares, err := ledger.Allocate(dec("50.00"), map[int64]decimal.Decimal{
			1: decimal.Zero,
			2: dec("2.00"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(fixedShares(shares)).To(Equal(map[int64]string{2: "50.00"}))
	})

	It("should return nothing when no one contributed", func() {
		shares, err := ledger.Allocate(dec("50.00"), map[int64]decimal.Decimal{1: decimal.Zero})
		Expect(err).NotTo(HaveOccurred())
		Expect(shares).To(BeEmpty())

		shares, err = ledger.Allocate(dec("50.00"), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(shares).To(BeEmpty())
	})

	It("should allocate more than the contributions when the total exceeds them", func() {
		shares, err := ledger.Allocate(dec("400.00"), map[int64]decimal.Decimal{
			1: dec("50.00"),
			2: dec("150.00"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(fixedShares(shares)).To(Equal(map[int64]string{1: "100.00", 2: "300.00"}))
	})

	It("should reject negative inputs and sub-cent totals", func() {
		_, err := ledger.Allocate(dec("-1.00"), map[int64]decimal.Decimal{1: dec("1")})
		Expect(err).To(MatchError(errors.ErrInvalidContribution))

		_, err = ledger.Allocate(dec("1.00"), map[int64]decimal.Decimal{1: dec("-1")})
		Expect(err).To(MatchError(errors.ErrInvalidContribution))

		_, err = ledger.Allocate(dec("1.001"), map[int64]decimal.Decimal{1: dec("1")})
		Expect(err).To(MatchError(errors.ErrInvalidContribution))
	})
})

var _ = Describe("Proportion", func() {
	It("should divide part by whole", func() {
		prop, err := ledger.Proportion(dec("10"), dec("40"))
		Expect(err).NotTo(HaveOccurred())
		Expect(prop.String()).To(Equal("0.25"))
	})

	It("should be zero for an empty whole", func() {
		prop, err := ledger.Proportion(dec("10"), decimal.Zero)
		Expect(err).NotTo(HaveOccurred())
		Expect(prop.IsZero()).To(BeTrue())
	})

	It("should flag results outside the unit interval", func() {
		_, err := ledger.Proportion(dec("50"), dec("40"))
		Expect(err).To(MatchError(errors.ErrInvariantViolation))

		_, err = ledger.Proportion(dec("-1"), dec("40"))
		Expect(err).To(MatchError(errors.ErrInvariantViolation))
	})
})

var _ = Describe("SortedUserIDs", func() {
	It("should order ids ascending", func() {
		ids := ledger.SortedUserIDs(map[int64]decimal.Decimal{5: dec("1"), 2: dec("1"), 9: dec("1")})
		Expect(ids).To(Equal([]int64{2, 5, 9}))
	})
})
