package ledger

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Export", func() {
	var transactions []*Transaction

	BeforeEach(func() {
		transactions = []*Transaction{
			{ID: "tx-1", Type: Income, Amount: amount(5000000), Category: "Gaji", Description: "Gaji Januari", Date: "2024-01-01"},
			{ID: "tx-2", Type: Expense, Amount: amount(35000), Category: "Makanan", Description: `Nasi "padang"`, Date: "2024-01-02"},
			{ID: "tx-3", Type: Transfer, Amount: amount(100000), Category: "Tabungan", Description: "", Date: "2024-01-03"},
		}
	})

	Describe("WriteCSV", func() {
		It("should write the header and quoted rows with Indonesian labels", func() {
			var buf bytes.Buffer
			Expect(WriteCSV(&buf, transactions)).To(Succeed())
			Expect(buf.String()).To(Equal(
				"Tanggal,Kategori,Jenis,Jumlah,Deskripsi\n" +
					`"2024-01-01","Gaji","Pemasukan","5000000","Gaji Januari"` + "\n" +
					`"2024-01-02","Makanan","Pengeluaran","35000","Nasi ""padang"""` + "\n" +
					`"2024-01-03","Tabungan","Transfer","100000",""`,
			))
		})

		It("should write only the header when empty", func() {
			var buf bytes.Buffer
			Expect(WriteCSV(&buf, nil)).To(Succeed())
			Expect(buf.String()).To(Equal("Tanggal,Kategori,Jenis,Jumlah,Deskripsi"))
		})
	})

	Describe("WriteJSON", func() {
		It("should write an indented array", func() {
			var buf bytes.Buffer
			Expect(WriteJSON(&buf, transactions)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("\n  {"))

			var decoded []*Transaction
			Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
			Expect(decoded).To(HaveLen(3))
			Expect(decoded[1].Amount.Equal(amount(35000))).To(BeTrue())
		})

		It("should write an empty array for no transactions", func() {
			var buf bytes.Buffer
			Expect(WriteJSON(&buf, nil)).To(Succeed())
			Expect(buf.String()).To(Equal("[]\n"))
		})
	})
})
