package document

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smathur/findocs/internal/analysis"
)

var _ = Describe("BoltDB", func() {
	var (
		db  *BoltDB
		err error
	)

	BeforeEach(func() {
		db, err = NewBoltDB(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	Describe("SaveSession and GetSession", func() {
		var session *Session

		BeforeEach(func() {
			session = &Session{
				ID: "s1",
				Tables: []analysis.Table{
					{Document: "a.pdf", Rows: []analysis.Row{
						{Parameter: "Total Balance", Value: analysis.Numeric(5000.50)},
						{Parameter: "Cheque Date", Value: analysis.Raw("March 2024")},
					}},
				},
				Images:    []StoredImage{{Name: "a.pdf", Path: "1_a.pdf", ContentType: "application/pdf"}},
				Warnings:  []string{"a warning"},
				CreatedAt: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			}
			Expect(db.SaveSession(session)).To(Succeed())
		})

		It("round-trips the session including tagged values", func() {
			got, err := db.GetSession("s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(session))
		})

		It("overwrites on re-save", func() {
			session.Warnings = nil
			Expect(db.SaveSession(session)).To(Succeed())
			got, err := db.GetSession("s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Warnings).To(BeEmpty())
		})
	})

	Describe("GetSession", func() {
		When("the session does not exist", func() {
			It("returns an error", func() {
				_, err := db.GetSession("missing")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("DeleteSession", func() {
		BeforeEach(func() {
			Expect(db.SaveSession(&Session{ID: "s1"})).To(Succeed())
		})

		It("removes the session", func() {
			Expect(db.DeleteSession("s1")).To(Succeed())
			_, err := db.GetSession("s1")
			Expect(err).To(HaveOccurred())
		})
	})
})
