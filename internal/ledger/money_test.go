package ledger

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("FormatIDR", func() {
	DescribeTable("formatting",
		func(value decimal.Decimal, expected string) {
			Expect(FormatIDR(value)).To(Equal(expected))
		},
		Entry("thousands", decimal.NewFromInt(50000), "Rp 50.000"),
		Entry("millions", decimal.NewFromInt(1250000), "Rp 1.250.000"),
		Entry("small", decimal.NewFromInt(500), "Rp 500"),
		Entry("fractions are rounded", decimal.RequireFromString("1999.5"), "Rp 2.000"),
		Entry("negative", decimal.NewFromInt(-75000), "-Rp 75.000"),
	)
})
