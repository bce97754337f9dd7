package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// multipartUpload builds a multipart body with a single "file" part
func multipartUpload(filename, contentType string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())
	return body, writer.FormDataContentType()
}

func decodeBody(resp *http.Response) map[string]any {
	defer resp.Body.Close()
	var body map[string]any
	Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
	return body
}

var _ = Describe("Server", func() {
	var (
		recognizer     *mockRecognizer
		service        *Service
		server         *Server
		auth           BasicAuth
		allowedOrigins []string
		ghttpServer    *ghttp.Server
	)

	BeforeEach(func() {
		recognizer = &mockRecognizer{lines: groceryLines}
		service = NewServiceWithDeps(recognizer, testExtractor(), &mockIDGenerator{id: "req-1"})
		auth = BasicAuth{}
		allowedOrigins = []string{"http://localhost:3000"}
	})

	JustBeforeEach(func() {
		server = NewServerWithMux(service, auth, allowedOrigins, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleRoot", func() {
		It("reports status and engine", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeBody(resp)).To(Equal(map[string]any{
				"status":  "ok",
				"service": "receipt-ocr",
				"engine":  "mock",
			}))
		})
	})

	Describe("handleHealth", func() {
		It("reports healthy", func() {
			resp, err := http.Get(ghttpServer.URL() + "/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeBody(resp)).To(Equal(map[string]any{"status": "healthy"}))
		})
	})

	Describe("handleOCR", func() {
		var (
			filename    string
			contentType string
			resp        *http.Response
		)

		BeforeEach(func() {
			filename = "receipt.png"
			contentType = "image/png"
		})

		JustBeforeEach(func() {
			body, formType := multipartUpload(filename, contentType, []byte("image-bytes"))
			var err error
			resp, err = http.Post(ghttpServer.URL()+"/ocr", formType, body)
			Expect(err).NotTo(HaveOccurred())
		})

		When("an image is uploaded", func() {
			It("returns the extraction result", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				data, err := io.ReadAll(resp.Body)
				resp.Body.Close()
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(MatchJSON(`{
					"merchant": "Walmart",
					"total": 5.48,
					"subtotal": null,
					"date": "2024-01-15",
					"currency": "USD",
					"items": [{"name": "BANANAS", "price": 1.99}, {"name": "MILK", "price": 3.49}],
					"raw_text": "WALMART\nBANANAS 1.99\nMILK 3.49\nTOTAL 5.48\n01/15/2024",
					"confidence": 0.89
				}`))
			})
		})

		When("the upload is not an image", func() {
			BeforeEach(func() {
				filename = "receipt.pdf"
				contentType = "application/pdf"
			})

			It("rejects the upload", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(decodeBody(resp)).To(Equal(map[string]any{"detail": "File must be an image"}))
				Expect(recognizer.calls.Load()).To(BeZero())
			})
		})

		When("the part has no content type", func() {
			BeforeEach(func() {
				filename = "IMG_0001.HEIC"
				contentType = ""
			})

			It("infers it from the file extension", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
				Expect(recognizer.lastContentType).To(Equal("image/heic"))
			})
		})

		When("recognition fails", func() {
			BeforeEach(func() {
				recognizer.err = errors.New("tesseract exploded")
			})

			It("returns a server error with detail", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				body := decodeBody(resp)
				Expect(body["detail"]).To(HavePrefix("OCR processing failed: "))
				Expect(body["detail"]).To(ContainSubstring("tesseract exploded"))
			})
		})
	})

	Describe("handleOCR without a file", func() {
		It("returns bad request", func() {
			body := &bytes.Buffer{}
			writer := multipart.NewWriter(body)
			Expect(writer.WriteField("other", "value")).To(Succeed())
			Expect(writer.Close()).To(Succeed())

			resp, err := http.Post(ghttpServer.URL()+"/ocr", writer.FormDataContentType(), body)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(decodeBody(resp)).To(HaveKeyWithValue("detail", "No file provided"))
		})
	})

	Describe("handleExtract", func() {
		It("extracts fields from the text body", func() {
			resp, err := http.Post(ghttpServer.URL()+"/extract", "text/plain", strings.NewReader("TARGET CIRCLE\nTOTAL $12.34"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body := decodeBody(resp)
			Expect(body).To(HaveKeyWithValue("merchant", "Target"))
			Expect(body).To(HaveKeyWithValue("total", 12.34))
			Expect(body).To(HaveKeyWithValue("confidence", 0.75))
			Expect(body).To(HaveKeyWithValue("items", BeEmpty()))
		})

		It("returns an empty result for an empty body", func() {
			resp, err := http.Post(ghttpServer.URL()+"/extract", "text/plain", strings.NewReader(""))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body := decodeBody(resp)
			Expect(body).To(HaveKeyWithValue("merchant", BeNil()))
			Expect(body).To(HaveKeyWithValue("confidence", BeNumerically("==", 0)))
		})
	})

	Describe("CORS", func() {
		preflight := func(origin string) *http.Response {
			req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/ocr", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Origin", origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			return resp
		}

		It("allows listed origins", func() {
			resp := preflight("http://localhost:3000")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("POST"))
		})

		It("omits headers for other origins", func() {
			resp := preflight("http://evil.example")
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(BeEmpty())
		})

		When("any origin is allowed", func() {
			BeforeEach(func() {
				allowedOrigins = []string{"*"}
			})

			It("echoes the request origin", func() {
				resp := preflight("http://anything.example")
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("http://anything.example"))
			})
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
		})

		post := func(credentials string) *http.Response {
			req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/extract", strings.NewReader("TOTAL 5.00"))
			Expect(err).NotTo(HaveOccurred())
			if credentials != "" {
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))
			}
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			return resp
		}

		It("rejects missing credentials", func() {
			resp := post("")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("rejects wrong credentials", func() {
			Expect(post("admin:wrong").StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("accepts valid credentials", func() {
			Expect(post("admin:secret").StatusCode).To(Equal(http.StatusOK))
		})

		It("leaves health checks open", func() {
			resp, err := http.Get(ghttpServer.URL() + "/health")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("unknown routes", func() {
		It("returns not found", func() {
			resp, err := http.Get(ghttpServer.URL() + "/nope")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})

var _ = DescribeTable("uploadContentType",
	func(declared, filename, expected string) {
		Expect(uploadContentType(declared, filename)).To(Equal(expected))
	},
	Entry("declared type wins", "Image/JPEG", "scan.png", "image/jpeg"),
	Entry("octet-stream falls back to the extension", "application/octet-stream", "IMG_1.HEIC", "image/heic"),
	Entry("webp by extension", "", "photo.webp", "image/webp"),
	Entry("unknown extension", "", "notes.doc", ""),
)
