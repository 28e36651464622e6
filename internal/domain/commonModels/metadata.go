package commonModels

import (
	"fmt"
	"math"
)

const (
	MetaTypeText     = "text"
	MetaTypeTable    = "table"
	MetaTypeOCRTable = "ocr_table"
)

// ChunkMeta describes where a chunk came from. Implemented by TextMeta, TableMeta and OCRMeta.
type ChunkMeta interface {
	SourceName() string
	Kind() string
	isChunkMeta()
}

// TextMeta is a narrative chunk. Empty Section means the chunk is not under a known heading.
type TextMeta struct {
	Source  string
	Section string
	Page    int
}

type TableMeta struct {
	Source  string
	TableID int
	ChunkID int
}

// OCRMeta is table-like text recognised from a rendered page.
type OCRMeta struct {
	Source string
	Page   int
}

func (m TextMeta) SourceName() string  { return m.Source }
func (m TableMeta) SourceName() string { return m.Source }
func (m OCRMeta) SourceName() string   { return m.Source }

func (TextMeta) Kind() string  { return MetaTypeText }
func (TableMeta) Kind() string { return MetaTypeTable }
func (OCRMeta) Kind() string   { return MetaTypeOCRTable }

func (TextMeta) isChunkMeta()  {}
func (TableMeta) isChunkMeta() {}
func (OCRMeta) isChunkMeta()   {}

// MetaToMap flattens metadata into the payload stored next to a vector.
func MetaToMap(meta ChunkMeta) map[string]any {
	switch m := meta.(type) {
	case TextMeta:
		out := map[string]any{"source": m.Source, "type": MetaTypeText, "page": m.Page}
		if m.Section != "" {
			out["section"] = m.Section
		}
		return out
	case TableMeta:
		return map[string]any{"source": m.Source, "type": MetaTypeTable, "table_id": m.TableID, "chunk_id": m.ChunkID}
	case OCRMeta:
		return map[string]any{"source": m.Source, "type": MetaTypeOCRTable, "page": m.Page}
	default:
		return map[string]any{}
	}
}

// MetaFromMap is the inverse of MetaToMap. Numbers may arrive as any numeric type
// (JSON decodes to float64, qdrant to int64).
func MetaFromMap(payload map[string]any) (ChunkMeta, error) {
	source, _ := payload["source"].(string)
	kind, _ := payload["type"].(string)

	switch kind {
	case MetaTypeText, "":
		section, _ := payload["section"].(string)
		return TextMeta{Source: source, Section: section, Page: asInt(payload["page"])}, nil
	case MetaTypeTable:
		return TableMeta{Source: source, TableID: asInt(payload["table_id"]), ChunkID: asInt(payload["chunk_id"])}, nil
	case MetaTypeOCRTable:
		return OCRMeta{Source: source, Page: asInt(payload["page"])}, nil
	default:
		return nil, fmt.Errorf("unknown chunk type %q", kind)
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(math.Round(float64(n)))
	case float64:
		return int(math.Round(n))
	default:
		return 0
	}
}
