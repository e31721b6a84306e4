package extraction

import (
	"context"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

var _ = Describe("Together", func() {
	var (
		server    *ghttp.Server
		extractor *Together
		imageData []byte
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		extractor, err = NewTogetherWithBaseURL(server.URL(), "test-key", "")
		Expect(err).NotTo(HaveOccurred())
		// JPEG uploads pass through image preparation untouched.
		imageData = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewTogether", func() {
		It("requires an api key", func() {
			_, err := NewTogether("", "")
			Expect(err).To(HaveOccurred())
		})

		It("defaults the model name", func() {
			t, err := NewTogether("key", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.model).To(Equal(defaultTogetherModel))
		})
	})

	Describe("ExtractParameters", func() {
		When("the model returns labeled lines", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest("POST", "/v1/chat/completions"),
					ghttp.VerifyHeaderKV("Authorization", "Bearer test-key"),
					ghttp.VerifyContentType("application/json"),
					ghttp.RespondWithJSONEncoded(http.StatusOK,
						chatReply("Total Balance: 5,000.50\nNet Salary: 27000.00")),
				))
			})

			It("parses the reply into rows", func() {
				rows, raw, err := extractor.ExtractParameters(context.Background(), imageData, "image/jpeg", BankStatement)
				Expect(err).NotTo(HaveOccurred())
				Expect(raw).To(ContainSubstring("Total Balance"))
				Expect(rows).To(HaveLen(2))
				n, ok := rows[0].Value.Number()
				Expect(ok).To(BeTrue())
				Expect(n).To(Equal(5000.50))
			})

			It("sends the data-URL image and the document-type prompt", func() {
				_, _, err := extractor.ExtractParameters(context.Background(), imageData, "image/jpeg", BankStatement)
				Expect(err).NotTo(HaveOccurred())
				Expect(server.ReceivedRequests()).To(HaveLen(1))
			})
		})

		When("the model reply has no labeled lines", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK,
					chatReply("I cannot read this document.")))
			})

			It("returns a no-parameters error with the raw reply", func() {
				rows, raw, err := extractor.ExtractParameters(context.Background(), imageData, "image/jpeg", SalarySlip)
				Expect(rows).To(BeNil())
				Expect(raw).To(Equal("I cannot read this document."))
				var noParams *NoParametersError
				Expect(errors.As(err, &noParams)).To(BeTrue())
			})
		})

		When("the API fails", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "boom"))
			})

			It("surfaces the error without retrying", func() {
				_, _, err := extractor.ExtractParameters(context.Background(), imageData, "image/jpeg", Cheque)
				Expect(err).To(HaveOccurred())
				Expect(server.ReceivedRequests()).To(HaveLen(1))
			})
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/v1/chat/completions"),
				ghttp.RespondWithJSONEncoded(http.StatusOK,
					chatReply("The statement covers March 2024.")),
			))
		})

		It("returns the answer verbatim", func() {
			answer, err := extractor.Query(context.Background(), imageData, "image/jpeg", "What period does this cover?")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer).To(Equal("The statement covers March 2024."))
		})
	})
})
