package export

import (
	"context"
	"encoding/base64"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// captureWidthPx is the fixed layout width the HTML is rendered at. Pages
// are styled for this width; the capture never reflows.
const captureWidthPx = 794

// captureScale is the device scale factor for print fidelity.
const captureScale = 2.0

// Capturer rasterizes an HTML document into a single tall PNG. The PDF
// builder slices the result across physical pages.
type Capturer interface {
	CapturePNG(ctx context.Context, html string) ([]byte, error)
}

// ChromeCapturer drives a headless Chrome via chromedp.
type ChromeCapturer struct {
	// ExecPath overrides Chrome binary autodetection. Empty consults
	// CHROME_PATH and well-known install locations.
	ExecPath string
	// Timeout bounds a single capture so a hung renderer cannot block an
	// export forever.
	Timeout time.Duration
}

// NewChromeCapturer constructs a capturer with a 90s capture budget.
func NewChromeCapturer() *ChromeCapturer {
	return &ChromeCapturer{Timeout: 90 * time.Second}
}

// CapturePNG renders html at the fixed capture width and 2x scale and
// screenshots the full page height.
func (c *ChromeCapturer) CapturePNG(ctx context.Context, html string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
	)
	if path := c.chromePath(); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(captureWidthPx, 1123, chromedp.EmulateScale(captureScale)),
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		// Let late-loading images settle before the screenshot.
		chromedp.Sleep(500*time.Millisecond),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, &RenderError{Stage: "raster capture", Err: err}
	}
	return buf, nil
}

func (c *ChromeCapturer) chromePath() string {
	if c.ExecPath != "" {
		return c.ExecPath
	}
	if env := os.Getenv("CHROME_PATH"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env
		}
	}
	for _, path := range []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
