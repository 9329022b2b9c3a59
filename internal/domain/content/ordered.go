// internal/domain/content/ordered.go

package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedPosts maps a key (trend name or account handle) to posts while
// remembering the order in which keys were added.
type OrderedPosts struct {
	keys  []string
	posts map[string][]ContentItem
}

// NewOrderedPosts creates an empty OrderedPosts
func NewOrderedPosts() *OrderedPosts {
	return &OrderedPosts{
		keys:  []string{},
		posts: make(map[string][]ContentItem),
	}
}

// Set stores posts under key. A new key is appended to the key order; an
// existing key keeps its position.
func (o *OrderedPosts) Set(key string, posts []ContentItem) {
	if posts == nil {
		posts = []ContentItem{}
	}
	if _, exists := o.posts[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.posts[key] = posts
}

// Get returns the posts stored under key
func (o *OrderedPosts) Get(key string) ([]ContentItem, bool) {
	if o == nil {
		return nil, false
	}
	posts, ok := o.posts[key]
	return posts, ok
}

// Keys returns the keys in insertion order
func (o *OrderedPosts) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys
func (o *OrderedPosts) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON writes a JSON object whose members follow key order
func (o *OrderedPosts) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.posts[key])
		if err != nil {
			return nil, fmt.Errorf("error marshaling posts for %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping member order
func (o *OrderedPosts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	*o = *NewOrderedPosts()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var posts []ContentItem
		if err := dec.Decode(&posts); err != nil {
			return fmt.Errorf("error decoding posts for %s: %w", key, err)
		}
		o.Set(key, posts)
	}

	_, err = dec.Token()
	return err
}
