package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

var ErrUnsupportedDocument = errors.New("unsupported document type")

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return commonModels.DOCX
	case ".xlsx", ".xlsm":
		return commonModels.XLSX
	default:
		return commonModels.ERR
	}
}

// loadPages returns the narrative text of a document page by page. Workbooks
// have no narrative pages; their content is indexed as tables.
func loadPages(path string, logger *logger_i.Logger) ([]rawPage, error) {
	switch getDocType(path) {
	case commonModels.PDF:
		return extractPDF(path, logger)
	case commonModels.DOCX:
		return extractdocxTxtRtf(path)
	case commonModels.XLSX:
		if _, err := readSheets(path); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, filepath.Ext(path))
	}
}

func extractPDF(path string, logger *logger_i.Logger) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// skip the page, keep the document
			logger.Warn("Error parsing page content", "path", path, "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractdocxTxtRtf reads a .odt, .docx, .rtf or plaintext file as a single page
func extractdocxTxtRtf(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", filepath.Ext(path), err)
	}

	//cat does not expose page breaks
	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resChan <- result{err: fmt.Errorf("malformed page: %v", rec)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PDFPageTimeout):
		return "", errors.New("timeout")
	}
}
