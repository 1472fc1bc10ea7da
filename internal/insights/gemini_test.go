package insights

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"google.golang.org/api/option"
)

var _ = Describe("Gemini", func() {
	var (
		server *ghttp.Server
		gemini *Gemini
		body   map[string]any
		reply  string
		err    error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		gemini, err = NewGeminiWithOptions("secret-key", "gemini-test", option.WithEndpoint(server.URL()))
		Expect(err).NotTo(HaveOccurred())

		server.RouteToHandler(http.MethodPost, "/v1beta/models/gemini-test:generateContent", func(w http.ResponseWriter, r *http.Request) {
			raw, readErr := io.ReadAll(r.Body)
			Expect(readErr).NotTo(HaveOccurred())
			Expect(json.Unmarshal(raw, &body)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"summary\": "}, {"text": "\"Hemat\"}"}]}}]}`))
		})
	})

	AfterEach(func() {
		gemini.Close()
		server.Close()
	})

	JustBeforeEach(func() {
		reply, err = gemini.Complete(context.Background(), "You are a finance assistant", "Analyze this")
	})

	It("joins the text parts of the first candidate", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(`{"summary": "Hemat"}`))
	})

	It("sends the system prompt as a system instruction", func() {
		Expect(body).To(HaveKey("systemInstruction"))
		Expect(body["systemInstruction"]).To(HaveKeyWithValue("parts", ContainElement(HaveKeyWithValue("text", "You are a finance assistant"))))
	})

	It("sends the prompt as user content", func() {
		Expect(body["contents"]).To(ContainElement(HaveKeyWithValue("parts", ContainElement(HaveKeyWithValue("text", "Analyze this")))))
	})

	When("the API fails", func() {
		BeforeEach(func() {
			server.RouteToHandler(http.MethodPost, "/v1beta/models/gemini-test:generateContent", ghttp.RespondWith(http.StatusInternalServerError, `{"error": {"code": 500, "message": "boom"}}`))
		})

		It("returns ErrGateway", func() {
			Expect(err).To(MatchError(ErrGateway))
		})
	})
})

var _ = Describe("NewGemini", func() {
	It("requires an API key", func() {
		_, err := NewGemini("", "")
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})
})
