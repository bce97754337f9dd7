package extraction

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("resolveItems", func() {
	var (
		lines []string
		items []LineItem
	)

	JustBeforeEach(func() {
		items = resolveItems(NewDocument(strings.Join(lines, "\n")))
	})

	When("lines have a name and a price", func() {
		BeforeEach(func() {
			lines = []string{"WALMART", "BANANAS 1.99", "MILK 3.49", "TOTAL 5.48", "01/15/2024"}
		})

		It("extracts them in order", func() {
			Expect(items).To(HaveLen(2))
			Expect(items[0].Name).To(Equal("BANANAS"))
			Expect(items[0].Price).To(equalDecimal("1.99"))
			Expect(items[1].Name).To(Equal("MILK"))
			Expect(items[1].Price).To(equalDecimal("3.49"))
		})
	})

	When("a line has a tax flag", func() {
		BeforeEach(func() {
			lines = []string{"ORGANIC EGGS 5.29 F"}
		})

		It("drops the flag", func() {
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("ORGANIC EGGS"))
			Expect(items[0].Price).To(equalDecimal("5.29"))
		})
	})

	When("the tax flag is lower case", func() {
		BeforeEach(func() {
			lines = []string{"ORGANIC EGGS 5.29 f"}
		})

		It("does not match", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("a summary line looks like an item", func() {
		BeforeEach(func() {
			lines = []string{
				"VISA TOTAL 42.00",
				"Sales Tax 1.20",
				"CHANGE DUE 0.25",
				"Cash Back 20.00",
				"Payment 12.00",
				"Balance 3.00",
				"Amount 9.99",
				"Debit Card 4.00",
			}
		})

		It("never emits it", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("the price is out of range", func() {
		BeforeEach(func() {
			lines = []string{"TELEVISION 1,299.99", "FREEBIE 0.00"}
		})

		It("skips it", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("the price is just below the maximum", func() {
		BeforeEach(func() {
			lines = []string{"RICE BAG 25LB 999.00"}
		})

		It("keeps it", func() {
			Expect(items).To(HaveLen(1))
			Expect(items[0].Price).To(equalDecimal("999"))
		})
	})

	When("the name is shorter than two characters once trimmed", func() {
		BeforeEach(func() {
			lines = []string{"A   5.00"}
		})

		It("skips it", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("the description is longer than 35 characters", func() {
		BeforeEach(func() {
			lines = []string{strings.Repeat("N", 36) + " 5.00"}
		})

		It("skips it", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("a number-only line has the item shape", func() {
		BeforeEach(func() {
			lines = []string{"555 123 45.67"}
		})

		It("is extracted like any other line", func() {
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("555 123"))
		})
	})

	When("there are no lines", func() {
		BeforeEach(func() {
			lines = nil
		})

		It("returns an empty slice", func() {
			Expect(items).NotTo(BeNil())
			Expect(items).To(BeEmpty())
		})
	})
})
