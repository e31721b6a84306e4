package document

import (
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Fetcher", func() {
	var (
		server  *ghttp.Server
		fetcher *Fetcher
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		fetcher = NewFetcherWithClient(http.DefaultClient)
	})

	AfterEach(func() {
		server.Close()
	})

	When("the server responds immediately", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "image bytes",
				http.Header{"Content-Type": []string{"image/png"}}))
		})

		It("returns the body and content type", func() {
			data, contentType, err := fetcher.Fetch(context.Background(), server.URL()+"/doc.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("image bytes")))
			Expect(contentType).To(Equal("image/png"))
		})
	})

	When("the server returns transient 500s before succeeding", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusInternalServerError, ""),
				ghttp.RespondWith(http.StatusBadGateway, ""),
				ghttp.RespondWith(http.StatusOK, "image bytes"),
			)
		})

		It("retries and succeeds", func() {
			data, _, err := fetcher.Fetch(context.Background(), server.URL()+"/doc.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("image bytes")))
			Expect(server.ReceivedRequests()).To(HaveLen(3))
		})
	})

	When("the server keeps failing", func() {
		BeforeEach(func() {
			for i := 0; i < fetchRetries+1; i++ {
				server.AppendHandlers(ghttp.RespondWith(http.StatusGatewayTimeout, ""))
			}
		})

		It("gives up after the retry budget", func() {
			_, _, err := fetcher.Fetch(context.Background(), server.URL()+"/doc.png")
			Expect(err).To(HaveOccurred())
			Expect(server.ReceivedRequests()).To(HaveLen(fetchRetries + 1))
		})
	})

	When("the server returns a non-retryable status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusNotFound, ""))
		})

		It("fails without retrying", func() {
			_, _, err := fetcher.Fetch(context.Background(), server.URL()+"/doc.png")
			Expect(err).To(HaveOccurred())
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	When("the context is cancelled during backoff", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, ""))
		})

		It("stops early", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, _, err := fetcher.Fetch(ctx, server.URL()+"/doc.png")
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})
	})

	Describe("fetchBackoff", func() {
		It("grows exponentially from the backoff factor", func() {
			Expect(fetchBackoff(1)).To(Equal(300 * time.Millisecond))
			Expect(fetchBackoff(2)).To(Equal(600 * time.Millisecond))
			Expect(fetchBackoff(3)).To(Equal(1200 * time.Millisecond))
		})
	})
})
