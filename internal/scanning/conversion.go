package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// Tesseract misses small glyphs; short images are upscaled to this height.
	minRecognitionHeight = 800
	recognitionHeight    = 1200
)

// pdfToImage renders the first page of a PDF (most receipts are single page)
func pdfToImage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// decodeImage decodes JPEG, PNG, GIF, HEIC/HEIF and PDF uploads
func decodeImage(data []byte, contentType string) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	mimeType := normalizeMimeType(contentType)

	if mimeType == "application/pdf" || isPDFFormat(data) {
		return pdfToImage(data)
	}

	// Go's standard image package doesn't support HEIC, common on iPhones
	if isHEICFormat(data) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	// Phone photos carry their rotation in EXIF
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
			return nil, fmt.Errorf("%w (supported: JPEG, PNG, GIF, WebP, HEIC, HEIF, PDF): %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// preprocess converts to grayscale and upscales short images for recognition
func preprocess(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minRecognitionHeight {
		return imaging.Resize(gray, 0, recognitionHeight, imaging.Lanczos)
	}
	return gray
}

// encodePNG encodes an image as PNG
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// prepareImageData decodes any supported upload and re-encodes it as PNG
func prepareImageData(data []byte, contentType string) ([]byte, error) {
	if normalizeMimeType(contentType) == "image/png" && !isHEICFormat(data) {
		if len(data) == 0 {
			return nil, ErrEmptyImage
		}
		return data, nil
	}

	img, err := decodeImage(data, contentType)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// normalizeMimeType lowercases and trims a MIME type, dropping parameters
func normalizeMimeType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

func isPDFFormat(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1"
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
