package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("resolveTotal", func() {
	var (
		text   string
		result candidate[decimal.Decimal]
		ok     bool
	)

	JustBeforeEach(func() {
		result, ok = resolveTotal(NewDocument(text))
	})

	DescribeTable("tier selection",
		func(input, amount, tier, w string) {
			result, ok = resolveTotal(NewDocument(input))
			Expect(ok).To(BeTrue())
			Expect(result.value).To(equalDecimal(amount))
			Expect(result.tier).To(Equal(tier))
			Expect(result.weight).To(equalDecimal(w))
		},
		Entry("emphasized total", "SUBTOTAL 40.00\n****TOTAL 45.67", "45.67", "emphasized_total", "0.40"),
		Entry("grand total", "GRAND TOTAL: $88.10", "88.10", "grand_total", "0.38"),
		Entry("bare total", "TOTAL 5.48", "5.48", "total", "0.35"),
		Entry("total with dollar sign", "TOTAL $12.34", "12.34", "total", "0.35"),
		Entry("total with thousands separator", "TOTAL 1,234.56", "1234.56", "total", "0.35"),
		Entry("amount due", "AMOUNT DUE 19.99", "19.99", "amount_due", "0.30"),
		Entry("balance", "BALANCE $7.25", "7.25", "balance", "0.25"),
		Entry("payment amount", "VISA 23.45", "23.45", "payment_amount", "0.25"),
		Entry("trailing amount on a subtotal line", "SUBTOTAL 12.00", "12.00", "total_line_trailing", "0.30"),
		Entry("trailing amount after other text", "TOTAL ITEMS 3 12.00", "12.00", "total_line_trailing", "0.30"),
		Entry("amount label shadowed by amount due", "AMOUNT: $14.20", "14.20", "amount_due", "0.30"),
		Entry("amount label after a rejected amount line", "AMOUNT 0.50\nAMOUNT: 14.20", "14.20", "amount_label", "0.25"),
		Entry("fallback amount with a tax flag", "CHICKEN 12.99F\nGUM 1.00", "12.99", "largest_amount", "0.15"),
		Entry("fallback amount glued to a prefix", "QTY x12.99", "12.99", "largest_amount", "0.15"),
	)

	When("the bare total is out of range", func() {
		BeforeEach(func() {
			text = "TOTAL 0.50\nAMOUNT DUE 0.50\nBALANCE 3.00"
		})

		It("continues down the cascade", func() {
			Expect(ok).To(BeTrue())
			Expect(result.value).To(equalDecimal("3.00"))
			Expect(result.tier).To(Equal("balance"))
		})
	})

	When("the only total exceeds the maximum", func() {
		BeforeEach(func() {
			text = "TOTAL 15000.00"
		})

		It("finds nothing", func() {
			Expect(ok).To(BeFalse())
			Expect(result.weight.IsZero()).To(BeTrue())
		})
	})

	When("the only total exceeds the maximum but other amounts exist", func() {
		BeforeEach(func() {
			text = "TOTAL 15000.00\nSHOES 59.99\nSOCKS 4.99"
		})

		It("falls back to the largest plausible amount", func() {
			Expect(ok).To(BeTrue())
			Expect(result.value).To(equalDecimal("59.99"))
			Expect(result.weight).To(equalDecimal("0.15"))
			Expect(result.tier).To(Equal(tierLargestAmount))
		})
	})

	When("no total label exists", func() {
		BeforeEach(func() {
			text = "COFFEE 3.25\nBAGEL 4.75\nMUFFIN 6.10"
		})

		It("uses the largest amount of at least 5", func() {
			Expect(result.value).To(equalDecimal("6.10"))
		})
	})

	When("every amount is below the fallback minimum", func() {
		BeforeEach(func() {
			text = "GUM 1.25\nMINTS 2.00"
		})

		It("finds nothing", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("finds nothing", func() {
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("resolveSubtotal", func() {
	var (
		text  string
		value decimal.Decimal
		ok    bool
	)

	JustBeforeEach(func() {
		value, ok = resolveSubtotal(NewDocument(text))
	})

	When("a compact subtotal is present", func() {
		BeforeEach(func() {
			text = "SUBTOTAL 10.00\nTAX 0.80\nTOTAL 10.80"
		})

		It("returns it", func() {
			Expect(ok).To(BeTrue())
			Expect(value).To(equalDecimal("10.00"))
		})
	})

	When("a spaced subtotal is present", func() {
		BeforeEach(func() {
			text = "Sub Total: $9.50"
		})

		It("returns it", func() {
			Expect(ok).To(BeTrue())
			Expect(value).To(equalDecimal("9.50"))
		})
	})

	When("the subtotal is out of range", func() {
		BeforeEach(func() {
			text = "SUBTOTAL 20000.00"
		})

		It("finds nothing", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("there is no subtotal", func() {
		BeforeEach(func() {
			text = "TOTAL 10.80"
		})

		It("finds nothing", func() {
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("parseAmount", func() {
	DescribeTable("parsing",
		func(input string, expected string, expectOK bool) {
			value, ok := parseAmount(input)
			Expect(ok).To(Equal(expectOK))
			if expectOK {
				Expect(value).To(equalDecimal(expected))
			}
		},
		Entry("plain", "12.34", "12.34", true),
		Entry("thousands separator", "1,234.50", "1234.50", true),
		Entry("trailing point", "12.", "12", true),
		Entry("integer", "42", "42", true),
		Entry("separators only", ",,", "", false),
	)
})
