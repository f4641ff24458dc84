package scrape

import (
	"bytes"
	"net/http"
)

// BlockType describes the kind of anti-bot response detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockRateLimit  BlockType = "rate_limit"
)

// Listing pages routinely embed reCAPTCHA for newsletter forms; only a
// page this small is treated as a captcha wall.
const captchaWallMax = 50 * 1024

// DetectBlock inspects a response for signs of anti-bot protection. It
// returns BlockNone for an ordinary page.
func DetectBlock(statusCode int, header http.Header, body []byte) BlockType {
	if statusCode == http.StatusTooManyRequests {
		return BlockRateLimit
	}

	if statusCode == http.StatusForbidden || statusCode == http.StatusServiceUnavailable {
		if header.Get("cf-ray") != "" || header.Get("cf-cache-status") != "" ||
			header.Get("server") == "cloudflare" {
			return BlockCloudflare
		}
	}

	lower := bytes.ToLower(body)

	if bytes.Contains(lower, []byte("checking your browser")) ||
		bytes.Contains(lower, []byte("cf-browser-verification")) ||
		bytes.Contains(lower, []byte("cf-challenge")) {
		return BlockCloudflare
	}

	if len(body) < captchaWallMax &&
		(bytes.Contains(lower, []byte("captcha")) || bytes.Contains(lower, []byte("are you a robot"))) {
		return BlockCaptcha
	}

	if len(body) < 2000 {
		if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("javascript")) {
			return BlockJSShell
		}
		if bytes.Contains(lower, []byte(`http-equiv="refresh"`)) {
			return BlockJSShell
		}
	}

	return BlockNone
}
