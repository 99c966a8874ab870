package main_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).ToNot(HaveOccurred())
	})

	It("should be a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("should describe every route group the router mounts", func() {
		for _, path := range []string{
			"/login",
			"/logout",
			"/user",
			"/auth/google/redirect",
			"/auth/google/callback",
			"/admin/users",
			"/admin/courses",
			"/admin/departments",
			"/instructor/dashboard",
			"/instructor/courses",
			"/employee/dashboard",
			"/employee/courses",
			"/health",
			"/ping",
		} {
			Expect(doc.Paths.Find(path)).ToNot(BeNil(), "missing path %s", path)
		}
	})

	It("should declare both authentication schemes", func() {
		Expect(doc.Components.SecuritySchemes).To(HaveKey("bearerAuth"))
		Expect(doc.Components.SecuritySchemes).To(HaveKey("sessionCookie"))
	})
})
