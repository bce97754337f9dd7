package scanning

import (
	"context"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server *ghttp.Server
		ollama *Ollama
		image  []byte
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		ollama, err = NewOllama(server.URL(), "llava")
		Expect(err).NotTo(HaveOccurred())
		image = encodeTestPNG(testImage(10, 10))
	})

	AfterEach(func() {
		server.Close()
	})

	When("the model returns a transcription", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					var req ollamaChatRequest
					Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
					Expect(req.Model).To(Equal("llava"))
					Expect(req.Format).To(Equal("json"))
					Expect(req.Stream).To(BeFalse())
					Expect(req.Messages).To(HaveLen(2))
					Expect(req.Messages[1].Images).To(HaveLen(1))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: `{"lines": ["TRADER JOE'S", "TOTAL 8.50"]}`},
					Done:    true,
				}),
			))
		})

		It("returns the transcribed lines", func() {
			lines, err := ollama.Recognize(context.Background(), image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([]string{"TRADER JOE'S", "TOTAL 8.50"}))
		})
	})

	When("the API fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the status and body", func() {
			_, err := ollama.Recognize(context.Background(), image, "image/png")
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("the model answers with prose", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
				Message: ollamaMessage{Role: "assistant", Content: "I cannot read this receipt."},
			}))
		})

		It("returns a parse error", func() {
			_, err := ollama.Recognize(context.Background(), image, "image/png")
			Expect(err).To(MatchError(ContainSubstring("parsing transcription")))
		})
	})

	When("the image cannot be decoded", func() {
		It("fails before calling the API", func() {
			_, err := ollama.Recognize(context.Background(), []byte("garbage"), "image/jpeg")
			Expect(err).To(MatchError(ErrUnsupportedFormat))
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})
	})

	It("is named ollama", func() {
		Expect(ollama.Name()).To(Equal("ollama"))
	})
})
