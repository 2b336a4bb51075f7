package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UploadedFile describes one stored attachment binary.
type UploadedFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// FileList is a JSONB array of attachments kept inline on the owning row.
type FileList []UploadedFile

func (l *FileList) Scan(src any) error {
	if src == nil {
		*l = FileList{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return l.parseFromBytes(v)
	case string:
		return l.parseFromBytes([]byte(v))
	default:
		return fmt.Errorf("FileList: unsupported Scan type %T", src)
	}
}

func (l FileList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// WithoutURL returns a copy of the list with the entry for url removed.
// The second return reports whether an entry was actually dropped.
func (l FileList) WithoutURL(url string) (FileList, bool) {
	out := make(FileList, 0, len(l))
	removed := false
	for _, f := range l {
		if f.URL == url {
			removed = true
			continue
		}
		out = append(out, f)
	}
	return out, removed
}

func (l *FileList) parseFromBytes(b []byte) error {
	if len(b) == 0 {
		*l = FileList{}
		return nil
	}
	var out []UploadedFile
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("FileList: %w", err)
	}
	if out == nil {
		out = []UploadedFile{}
	}
	*l = FileList(out)
	return nil
}
