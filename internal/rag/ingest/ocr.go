package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

var ErrBinaryMissing = errors.New("ocr binary not available")

// PopplerRasterizer renders PDF pages to PNG with pdftoppm.
type PopplerRasterizer struct {
	Bin string
	DPI int
}

func NewPopplerRasterizer() PopplerRasterizer {
	return PopplerRasterizer{Bin: config.OCRRasterizerBin, DPI: config.OCRRasterDPI}
}

func (p PopplerRasterizer) Rasterize(ctx context.Context, path string, outDir string) ([]string, error) {
	if getDocType(path) != commonModels.PDF {
		return nil, fmt.Errorf("cannot rasterize %s", filepath.Ext(path))
	}
	if !hasBinary(p.Bin) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryMissing, p.Bin)
	}

	runCtx, cancel := context.WithTimeout(ctx, config.OCRPageTimeout)
	defer cancel()

	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(runCtx, p.Bin, "-r", strconv.Itoa(p.DPI), "-png", path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %v, stderr: %s", p.Bin, err, stderr.String())
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sortPageImages(images)
	return images, nil
}

// TesseractRecognizer reads the text of one image with tesseract.
type TesseractRecognizer struct {
	Bin string
}

func NewTesseractRecognizer() TesseractRecognizer {
	return TesseractRecognizer{Bin: config.OCRRecognizerBin}
}

func (t TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if !hasBinary(t.Bin) {
		return "", fmt.Errorf("%w: %s", ErrBinaryMissing, t.Bin)
	}

	runCtx, cancel := context.WithTimeout(ctx, config.OCRPageTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.Bin, imagePath, "stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %v, stderr: %s", t.Bin, err, stderr.String())
	}
	return stdout.String(), nil
}

func hasBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// pdftoppm pads page numbers to the page count width, so compare numerically
func sortPageImages(images []string) {
	pageNum := func(p string) int {
		base := filepath.Base(p)
		ext := filepath.Ext(base)
		i := len(base) - len(ext) - 1
		for i >= 0 && base[i] >= '0' && base[i] <= '9' {
			i--
		}
		n, _ := strconv.Atoi(base[i+1 : len(base)-len(ext)])
		return n
	}
	sort.SliceStable(images, func(i, j int) bool { return pageNum(images[i]) < pageNum(images[j]) })
}
