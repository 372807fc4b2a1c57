package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// renderPages rasterizes the PDF into dir and returns the page images in
// page order.
func (e *Extractor) renderPages(ctx context.Context, path, dir string) ([]string, []string, error) {
	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.logger, args...)
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("render pages: %w", err)
	}

	// collect generated pngs (page-1.png or zero-padded page-01.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Slice(matches, func(i, j int) bool { return pageNumber(matches[i]) < pageNumber(matches[j]) })
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}
	return matches, nil, nil
}

func pageNumber(imgPath string) int {
	base := strings.TrimSuffix(filepath.Base(imgPath), filepath.Ext(imgPath))
	i := strings.LastIndexByte(base, '-')
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return -1
	}
	return n
}

// pdfToOCR renders every page and recognizes each image independently.
// Pages run on up to cfg.Workers goroutines; results are merged by page
// index. A page that fails becomes a warning and contributes no text.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, conf float32, err error) {
	tmpDir, err := os.MkdirTemp("", "mt-pp-*")
	if err != nil {
		return "", 0, nil, 0, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", path, "error", err)
		}
	}(tmpDir)

	images, warns, err := e.renderPages(ctx, path, tmpDir)
	if err != nil {
		return "", 0, warns, 0, err
	}

	type pageResult struct {
		text string
		conf float32
		err  error
	}
	results := make([]pageResult, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			txt, err := e.engine.Recognize(gctx, img)
			if err != nil {
				results[i].err = fmt.Errorf("page %d: %w", i+1, err)
				// only cancellation aborts the whole pass
				return gctx.Err()
			}
			results[i].text = txt
			if c, ok := e.engine.(Confidencer); ok && e.cfg.EnableTSVConfidence {
				if v, err := c.Confidence(gctx, img); err == nil {
					results[i].conf = v
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", len(images), warns, 0, err
	}

	var b strings.Builder
	var confSum float32
	var confN int
	for _, r := range results {
		if r.err != nil {
			warns = append(warns, r.err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.text)
		if r.conf > 0 {
			confSum += r.conf
			confN++
		}
	}
	if confN > 0 {
		conf = confSum / float32(confN)
	}
	return b.String(), len(images), warns, conf, nil
}
