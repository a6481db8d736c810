package rv

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Revision is an immutable snapshot of a resource's content. The ID is
// a random token with no ordering semantics; position in the revision
// list encodes chronology.
type Revision struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Resource is a named text document owned by one user. Name keeps the
// original casing; the case-folded slug is the document map key.
type Resource struct {
	Name string     `json:"name"`
	Revs []Revision `json:"revs"`
}

// Document is the per-user collection of resources keyed by slug.
// Insertion order of slugs is preserved across serialization so listing
// operations return resources in creation order, matching the key order
// of the on-disk JSON object.
type Document struct {
	order []string
	items map[string]*Resource
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{items: make(map[string]*Resource)}
}

// Len returns the number of resources in the document.
func (d *Document) Len() int { return len(d.order) }

// Get returns the resource stored under slug, if any.
func (d *Document) Get(slug string) (*Resource, bool) {
	res, ok := d.items[slug]
	return res, ok
}

// Set stores res under slug. A new slug is appended to the document
// order; an existing slug keeps its position.
func (d *Document) Set(slug string, res *Resource) {
	if _, ok := d.items[slug]; !ok {
		d.order = append(d.order, slug)
	}
	d.items[slug] = res
}

// Delete removes the resource stored under slug, if any.
func (d *Document) Delete(slug string) {
	if _, ok := d.items[slug]; !ok {
		return
	}
	delete(d.items, slug)
	for i, s := range d.order {
		if s == slug {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Slugs returns the slugs in document order.
func (d *Document) Slugs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Names returns the display names in document order.
func (d *Document) Names() []string {
	out := make([]string, 0, len(d.order))
	for _, slug := range d.order {
		out = append(out, d.items[slug].Name)
	}
	return out
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := NewDocument()
	for _, slug := range d.order {
		src := d.items[slug]
		revs := make([]Revision, len(src.Revs))
		copy(revs, src.Revs)
		c.Set(slug, &Resource{Name: src.Name, Revs: revs})
	}
	return c
}

// MarshalJSON serializes the document as a JSON object whose keys
// appear in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, slug := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(slug)
		if err != nil {
			return nil, fmt.Errorf("encoding slug: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(d.items[slug])
		if err != nil {
			return nil, fmt.Errorf("encoding resource %q: %w", slug, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object token by token so the key order of
// the stored form is retained.
func (d *Document) UnmarshalJSON(data []byte) error {
	d.order = nil
	d.items = make(map[string]*Resource)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document is not a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading document key: %w", err)
		}
		slug, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("document key is not a string")
		}
		var res Resource
		if err := dec.Decode(&res); err != nil {
			return fmt.Errorf("decoding resource %q: %w", slug, err)
		}
		d.Set(slug, &res)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading document end: %w", err)
	}
	return nil
}
