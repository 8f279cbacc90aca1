package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/phpdave11/gofpdf"

	"github.com/quotadesk/quotadesk/internal/document"
	"github.com/quotadesk/quotadesk/internal/pricing"
)

// PDFExporter turns a Document into PDF bytes: print-layout HTML, one tall
// raster capture, then mechanical slicing onto A4 pages. When a
// terms-and-conditions PDF is configured it is appended to the result;
// failure to append degrades to the main document with a warning.
type PDFExporter struct {
	Renderer *HTMLRenderer
	Capturer Capturer
	Fetcher  *ImageFetcher
	Logger   *slog.Logger

	// TermsPDF holds the supplementary terms document, nil to skip.
	TermsPDF []byte

	Geometry PageGeometry
}

// NewPDFExporter wires the default pipeline.
func NewPDFExporter(renderer *HTMLRenderer, capturer Capturer, logger *slog.Logger) *PDFExporter {
	return &PDFExporter{
		Renderer: renderer,
		Capturer: capturer,
		Fetcher:  NewImageFetcher(),
		Logger:   logger,
		Geometry: A4,
	}
}

// Export produces the finished PDF. Image fetches degrade per-image to the
// placeholder; any capture or assembly failure is fatal to this attempt and
// yields no partial file.
func (e *PDFExporter) Export(ctx context.Context, doc *Document) ([]byte, error) {
	inlined := e.inlineImages(ctx, doc)

	html, err := e.Renderer.Render(inlined)
	if err != nil {
		return nil, &RenderError{Stage: "html render", Err: err}
	}

	raster, err := e.Capturer.CapturePNG(ctx, html)
	if err != nil {
		return nil, err
	}

	main, err := e.assemble(raster)
	if err != nil {
		return nil, err
	}

	if len(e.TermsPDF) == 0 {
		return main, nil
	}
	merged, err := appendPDF(main, e.TermsPDF)
	if err != nil {
		// The quotation itself is intact; ship it without the terms.
		if e.Logger != nil {
			e.Logger.Warn("terms attachment failed, exporting without it", slog.Any("error", err))
		}
		return main, nil
	}
	return merged, nil
}

// assemble cuts the capture into page-height bands and lays each band onto
// its own A4 page.
func (e *PDFExporter) assemble(raster []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(raster))
	if err != nil {
		return nil, &RenderError{Stage: "raster decode", Err: err}
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	geo := e.Geometry
	if geo.WidthMM == 0 {
		geo = A4
	}
	slices := SlicePlan(width, height, geo)
	if len(slices) == 0 {
		return nil, &RenderError{Stage: "slice plan", Err: fmt.Errorf("empty raster %dx%d", width, height)}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	for i, s := range slices {
		band := imaging.Crop(img, image.Rect(0, s.Y, width, s.Y+s.Height))
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, band); err != nil {
			return nil, &RenderError{Stage: "slice encode", Err: err}
		}

		name := fmt.Sprintf("band-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opts, buf)
		pdf.ImageOptions(name, geo.MarginMM, geo.MarginMM, geo.ContentWidthMM(), s.HeightMM(width, geo), false, opts, 0, "")
	}
	if pdf.Err() {
		return nil, &RenderError{Stage: "pdf assembly", Err: pdf.Error()}
	}

	out := &bytes.Buffer{}
	if err := pdf.Output(out); err != nil {
		return nil, &RenderError{Stage: "pdf output", Err: err}
	}
	return out.Bytes(), nil
}

// inlineImages returns a copy of doc whose page items and logo reference
// data URLs instead of remote hosts, so the capture step never waits on the
// network. Fetch failures fall back to the placeholder per image.
func (e *PDFExporter) inlineImages(ctx context.Context, doc *Document) *Document {
	fetcher := e.Fetcher
	if fetcher == nil {
		fetcher = NewImageFetcher()
	}

	var urls []string
	seen := make(map[string]bool)
	collect := func(url string) {
		if url != "" && !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}
	for _, p := range doc.Pages {
		for _, li := range p.Items {
			collect(li.ImageRef)
		}
	}
	collect(doc.LogoURL)

	fetched := fetcher.FetchAll(ctx, urls)
	byURL := make(map[string]string, len(urls))
	for i, url := range urls {
		byURL[url] = dataURL(fetched[i])
	}

	out := *doc
	out.Pages = append([]document.Page(nil), doc.Pages...)
	for pi := range out.Pages {
		items := append([]pricing.LineItem(nil), out.Pages[pi].Items...)
		for ii := range items {
			if repl, ok := byURL[items[ii].ImageRef]; ok {
				items[ii].ImageRef = repl
			}
		}
		out.Pages[pi].Items = items
	}
	if repl, ok := byURL[doc.LogoURL]; ok {
		out.LogoURL = repl
	}
	return &out
}

func dataURL(img FetchedImage) string {
	return "data:image/" + img.Extension + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// appendPDF concatenates the terms document after the main document.
func appendPDF(main, terms []byte) ([]byte, error) {
	readers := []io.ReadSeeker{bytes.NewReader(main), bytes.NewReader(terms)}
	out := &bytes.Buffer{}
	if err := api.MergeRaw(readers, out, false, nil); err != nil {
		return nil, fmt.Errorf("merge terms pdf: %w", err)
	}
	return out.Bytes(), nil
}
