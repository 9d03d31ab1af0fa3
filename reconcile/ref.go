package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const placeholderPrefix = "order-"

type refKind uint8

const (
	refNone refKind = iota
	refPlaceholder
	refPersisted
)

// SectionRef trỏ tới section của một câu hỏi: chưa lưu (Placeholder theo thứ tự),
// đã lưu (Persisted theo id) hoặc không có section.
type SectionRef struct {
	kind  refKind
	order int
	id    string
}

func NoSection() SectionRef { return SectionRef{} }

func Placeholder(order int) SectionRef { return SectionRef{kind: refPlaceholder, order: order} }

func Persisted(id string) SectionRef {
	if id == "" {
		return SectionRef{}
	}
	return SectionRef{kind: refPersisted, id: id}
}

func (r SectionRef) IsNone() bool { return r.kind == refNone }

func (r SectionRef) Placeholder() (int, bool) { return r.order, r.kind == refPlaceholder }

func (r SectionRef) PersistedID() (string, bool) { return r.id, r.kind == refPersisted }

func (r SectionRef) String() string {
	switch r.kind {
	case refPlaceholder:
		return placeholderPrefix + strconv.Itoa(r.order)
	case refPersisted:
		return r.id
	}
	return ""
}

// ParseSectionRef đọc dạng chuỗi cũ: "order-<n>" là placeholder, chuỗi khác là id.
func ParseSectionRef(s string) SectionRef {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, placeholderPrefix); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
			return Placeholder(n)
		}
	}
	return Persisted(s)
}

type sectionRefJSON struct {
	Placeholder *int   `json:"placeholder,omitempty"`
	ID          string `json:"id,omitempty"`
}

func (r SectionRef) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case refPlaceholder:
		return json.Marshal(sectionRefJSON{Placeholder: &r.order})
	case refPersisted:
		return json.Marshal(sectionRefJSON{ID: r.id})
	}
	return []byte("null"), nil
}

// UnmarshalJSON nhận null, {"placeholder": n}, {"id": "..."} hoặc chuỗi dạng cũ.
func (r *SectionRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = NoSection()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ParseSectionRef(s)
		return nil
	}

	var v sectionRefJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("section_ref: %w", err)
	}
	switch {
	case v.Placeholder != nil && v.ID != "":
		return fmt.Errorf("section_ref: placeholder and id are mutually exclusive")
	case v.Placeholder != nil:
		if *v.Placeholder < 0 {
			return fmt.Errorf("section_ref: negative placeholder")
		}
		*r = Placeholder(*v.Placeholder)
	default:
		*r = Persisted(v.ID)
	}
	return nil
}
