package insights

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Gateway", func() {
	var (
		server  *ghttp.Server
		gateway *Gateway
		reply   string
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		gateway, err = NewGateway(server.URL(), "secret-key", "")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		reply, err = gateway.Complete(context.Background(), "system prompt", "user prompt")
	})

	When("the gateway answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/v1/chat/completions"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer secret-key"),
				ghttp.VerifyJSONRepresenting(chatRequest{
					Model: DefaultModel,
					Messages: []chatMessage{
						{Role: "system", Content: "system prompt"},
						{Role: "user", Content: "user prompt"},
					},
				}),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"choices": []map[string]any{
						{"message": map[string]string{"role": "assistant", "content": `{"summary":"ok"}`}},
					},
				}),
			))
		})

		It("returns the first choice", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal(`{"summary":"ok"}`))
		})
	})

	When("the gateway is rate limited", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusTooManyRequests, "slow down"))
		})

		It("returns ErrRateLimited", func() {
			Expect(err).To(MatchError(ErrRateLimited))
		})
	})

	When("the workspace is out of credits", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusPaymentRequired, "pay up"))
		})

		It("returns ErrPaymentRequired", func() {
			Expect(err).To(MatchError(ErrPaymentRequired))
		})
	})

	When("the gateway fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusBadGateway, "upstream down"))
		})

		It("returns ErrGateway", func() {
			Expect(err).To(MatchError(ErrGateway))
		})
	})

	When("the response has no choices", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"choices": []any{}}))
		})

		It("returns ErrGateway", func() {
			Expect(err).To(MatchError(ErrGateway))
		})
	})
})

var _ = Describe("NewGateway", func() {
	It("requires an api key", func() {
		_, err := NewGateway("", "", "")
		Expect(err).To(HaveOccurred())
	})
})
