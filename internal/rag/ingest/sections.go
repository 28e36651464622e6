package ingest

import (
	"iter"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// headings recognised as section starts, matched case-insensitively
var sectionKeywords = []string{
	"Title", "Subtitle", "Abstract", "Summary", "Executive Summary", "Keywords",
	"Preface", "Foreword", "Introduction", "Background", "Context", "Problem Statement",
	"Objectives", "Scope", "Related Work", "Literature Review", "Theoretical Framework",
	"Hypothesis", "Assumptions", "Methodology", "Methods", "Data Collection",
	"Data Sources", "Experimental Setup", "Materials and Methods", "Evaluation",
	"Validation", "Analysis", "Results", "Findings", "Observations", "Discussion",
	"Interpretation", "Implications", "Limitations", "Recommendations", "Future Work",
	"Use Cases", "Conclusion", "Summary and Conclusion", "Closing Remarks",
	"Acknowledgments", "Funding", "Author Contributions", "CRediT Taxonomy",
	"Conflict of Interest", "Ethical Approval", "References", "Bibliography",
	"Works Cited", "Appendices", "Appendix", "Supplementary Materials",
	"Supporting Information", "Glossary", "Abbreviations", "Index",
}

var sectionPattern = buildSectionPattern(sectionKeywords)

var titleCaser = cases.Title(language.English)

type Section struct {
	Title string
	Body  string
}

func buildSectionPattern(keywords []string) *regexp.Regexp {
	sorted := append([]string(nil), keywords...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	alts := make([]string, len(sorted))
	for i, k := range sorted {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(k), " ", `[ \t]+`)
	}

	// a heading line: optional "1." "2)" "12 " "A." "IV." prefix, one keyword, nothing else
	prefix := `(?:\d{1,2}[.)]?[ \t]*|(?:[IVX]{1,4}|[A-Z])[.)][ \t]*)?`
	return regexp.MustCompile(`(?im)^[ \t]*` + prefix + `(` + strings.Join(alts, "|") + `)[ \t\r]*$`)
}

// Sections splits text at known heading lines. The returned sequence yields
// headed sections in document order and skips those with an empty body; the
// bool is false when no section with content exists, so the caller should treat
// the text as a single unsectioned unit.
func Sections(text string) (iter.Seq[Section], bool) {
	matches := sectionPattern.FindAllStringSubmatchIndex(text, -1)

	found := false
	for i := range matches {
		if sectionBody(text, matches, i) != "" {
			found = true
			break
		}
	}

	return func(yield func(Section) bool) {
		for i, m := range matches {
			body := sectionBody(text, matches, i)
			if body == "" {
				continue
			}
			title := titleCaser.String(strings.Join(strings.Fields(text[m[2]:m[3]]), " "))
			if !yield(Section{Title: title, Body: body}) {
				return
			}
		}
	}, found
}

// preamble is the text ahead of the first heading, trimmed
func preamble(text string) string {
	loc := sectionPattern.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]])
}

func sectionBody(text string, matches [][]int, i int) string {
	end := len(text)
	if i+1 < len(matches) {
		end = matches[i+1][0]
	}
	return strings.TrimSpace(text[matches[i][1]:end])
}
