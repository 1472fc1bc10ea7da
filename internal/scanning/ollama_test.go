package scanning

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server    *ghttp.Server
		extractor *Ollama
		imageData []byte
		text      string
		err       error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		imageData = testPNG()

		extractor, err = NewOllama(server.URL()+"/", "llava")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = extractor.ExtractText(context.Background(), imageData, "image/png")
	})

	When("the model answers", func() {
		var request ollamaChatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, readErr := io.ReadAll(r.Body)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(json.Unmarshal(body, &request)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"message": map[string]string{
						"role":    "assistant",
						"content": "```\nTOKO MAJU\nTOTAL 80.000\n```",
					},
					"done": true,
				}),
			))
		})

		It("returns the cleaned transcript", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("TOKO MAJU\nTOTAL 80.000"))
		})

		It("sends the image with the user message", func() {
			Expect(request.Model).To(Equal("llava"))
			Expect(request.Stream).To(BeFalse())
			Expect(request.Messages).To(HaveLen(2))
			Expect(request.Messages[1].Role).To(Equal("user"))
			Expect(request.Messages[1].Images).To(ConsistOf(base64.StdEncoding.EncodeToString(imageData)))
		})
	})

	When("the API returns an error", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("the response is not JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "not json"))
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("decoding response")))
		})
	})
})
