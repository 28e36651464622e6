package commonModels

import "testing"

func TestMetaToMap(t *testing.T) {
	tests := []struct {
		name string
		meta ChunkMeta
		want map[string]any
	}{
		{
			name: "text with section",
			meta: TextMeta{Source: "a.pdf", Section: "Results", Page: 2},
			want: map[string]any{"source": "a.pdf", "type": "text", "section": "Results", "page": 2},
		},
		{
			name: "text without section omits the key",
			meta: TextMeta{Source: "a.pdf", Page: 1},
			want: map[string]any{"source": "a.pdf", "type": "text", "page": 1},
		},
		{
			name: "table",
			meta: TableMeta{Source: "b.xlsx", TableID: 1, ChunkID: 3},
			want: map[string]any{"source": "b.xlsx", "type": "table", "table_id": 1, "chunk_id": 3},
		},
		{
			name: "ocr",
			meta: OCRMeta{Source: "c.pdf", Page: 4},
			want: map[string]any{"source": "c.pdf", "type": "ocr_table", "page": 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MetaToMap(tt.meta)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("key %s: got %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestMetaFromMap(t *testing.T) {
	// JSON decoding produces float64 numbers
	meta, err := MetaFromMap(map[string]any{"source": "b.xlsx", "type": "table", "table_id": float64(2), "chunk_id": float64(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table, ok := meta.(TableMeta)
	if !ok {
		t.Fatalf("expected TableMeta, got %T", meta)
	}
	if table.TableID != 2 || table.ChunkID != 1 || table.SourceName() != "b.xlsx" {
		t.Errorf("unexpected table meta %+v", table)
	}

	meta, err = MetaFromMap(map[string]any{"source": "a.pdf", "type": "text", "page": int64(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := meta.(TextMeta); text.Section != "" || text.Page != 3 {
		t.Errorf("unexpected text meta %+v", text)
	}

	if _, err := MetaFromMap(map[string]any{"type": "image"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
