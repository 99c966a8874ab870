package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("sqlDriverName", func() {
	It("should map the sqlite config to the registered sqlite3 driver", func() {
		Expect(sqlDriverName("sqlite")).To(Equal("sqlite3"))
	})

	It("should default to pgx", func() {
		Expect(sqlDriverName("")).To(Equal("pgx"))
		Expect(sqlDriverName("postgres")).To(Equal("pgx"))
	})
})
