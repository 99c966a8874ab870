package logger_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adiwijaya/course-management/pkg/logger"
)

var _ = Describe("request-scoped logger", func() {
	It("should store and return the enriched logger through the context", func() {
		ctx := logger.With(context.Background(), "traceID", "abc-123")
		Expect(logger.From(ctx)).ToNot(BeNil())
		Expect(logger.From(ctx)).To(BeIdenticalTo(logger.From(ctx)))
	})

	It("should fall back to the process-wide logger on a bare context", func() {
		Expect(logger.From(context.Background())).To(BeIdenticalTo(logger.LoggerWrapper()))
	})
})
