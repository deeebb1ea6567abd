package hierarchy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Node là một dòng trong bảng tự tham chiếu (category, product category, menu item).
// ParentID nil = root.
type Node struct {
	ID         int64          `json:"id"`
	ParentID   *int64         `json:"parent_id"`
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	SortOrder  int            `json:"sort_order"`
	Type       string         `json:"type,omitempty"`
	ScopeID    *int64         `json:"scope_id,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	// Chỉ được load ở các read path chi tiết (Get, Create, Update)
	Parent   *Node   `json:"parent,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Scope trả về phạm vi mà node thuộc về (type tag, owning menu)
func (n *Node) Scope() Scope {
	return Scope{Type: n.Type, ScopeID: n.ScopeID}
}

// Scope lọc node theo type tag và/hoặc owning entity.
// Zero value = không lọc.
type Scope struct {
	Type    string
	ScopeID *int64
}

func (s Scope) String() string {
	typ := s.Type
	if typ == "" {
		typ = "all"
	}
	owner := "all"
	if s.ScopeID != nil {
		owner = fmt.Sprintf("%d", *s.ScopeID)
	}
	return typ + ":" + owner
}

// ParentRef là giá trị parent mới trong một patch. ID nil = chuyển lên root.
type ParentRef struct {
	ID *int64
}

func ParentOf(id *int64) *ParentRef {
	return &ParentRef{ID: id}
}

// Fields là tập cột cần ghi. Field nil thì không đụng tới.
type Fields struct {
	Name       *string
	Slug       *string
	SortOrder  *int
	Parent     *ParentRef
	Attributes map[string]any
}

func (f Fields) IsEmpty() bool {
	return f.Name == nil && f.Slug == nil && f.SortOrder == nil && f.Parent == nil && len(f.Attributes) == 0
}

type CreateInput struct {
	Name       string
	Slug       *string
	ParentID   *int64
	SortOrder  int
	Type       string
	ScopeID    *int64
	Attributes map[string]any
}

type ReorderItem struct {
	ID        int64
	SortOrder int
	Parent    *ParentRef
}

type ReorderResult struct {
	Updated int     `json:"updated"`
	Skipped []int64 `json:"skipped"`
}

// NullableID phân biệt 3 trạng thái của parent_id trong JSON body:
// không gửi (Set=false), null (Set=true, ID=nil), số (Set=true, ID=&v)
type NullableID struct {
	Set bool
	ID  *int64
}

func (n *NullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.ID = nil
		return nil
	}

	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("parent_id must be an integer or null: %w", err)
	}
	n.ID = &v
	return nil
}

// Ref trả về nil khi field không được gửi
func (n NullableID) Ref() *ParentRef {
	if !n.Set {
		return nil
	}
	return ParentOf(n.ID)
}
