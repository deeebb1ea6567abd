package hierarchy

import (
	"fmt"
	"regexp"
)

// DeletePolicy quyết định số phận của con cháu khi xóa một node
type DeletePolicy int

const (
	// Reparent: con trực tiếp được gắn lên parent của node bị xóa,
	// cây bên dưới giữ nguyên hình dạng
	Reparent DeletePolicy = iota
	// Cascade: xóa toàn bộ subtree
	Cascade
)

func (p DeletePolicy) String() string {
	switch p {
	case Reparent:
		return "reparent"
	case Cascade:
		return "cascade"
	default:
		return fmt.Sprintf("DeletePolicy(%d)", int(p))
	}
}

// Kind mô tả một loại entity dạng cây: bảng nào, cột nào, xóa theo policy nào.
// Một Service generic được khởi tạo với mỗi Kind.
type Kind struct {
	Name  string
	Table string

	// NameColumn mặc định là "name" (menu_items dùng "title")
	NameColumn string

	// TypeColumn != "" khi nhiều loại dùng chung một bảng (categories: post/product).
	// Types[0] là giá trị mặc định.
	TypeColumn string
	Types      []string

	// ScopeColumn != "" khi node thuộc về một entity cha không đệ quy (menu_items.menu_id)
	ScopeColumn string

	// Attributes là các cột riêng của từng loại, core chỉ chuyển tiếp
	Attributes []string

	Policy DeletePolicy
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (k Kind) Typed() bool  { return k.TypeColumn != "" }
func (k Kind) Scoped() bool { return k.ScopeColumn != "" }

func (k Kind) NameCol() string {
	if k.NameColumn == "" {
		return "name"
	}
	return k.NameColumn
}

func (k Kind) HasAttribute(name string) bool {
	for _, a := range k.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

func (k Kind) HasType(t string) bool {
	for _, typ := range k.Types {
		if typ == t {
			return true
		}
	}
	return false
}

// Validate kiểm tra descriptor trước khi dùng để build SQL:
// mọi tên bảng/cột phải là identifier an toàn
func (k Kind) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("kind: name is required")
	}

	idents := []string{k.Table, k.NameCol()}
	if k.Typed() {
		if len(k.Types) == 0 {
			return fmt.Errorf("kind %s: typed kind needs at least one type", k.Name)
		}
		idents = append(idents, k.TypeColumn)
	}
	if k.Scoped() {
		idents = append(idents, k.ScopeColumn)
	}
	idents = append(idents, k.Attributes...)

	for _, ident := range idents {
		if !identifierPattern.MatchString(ident) {
			return fmt.Errorf("kind %s: invalid identifier %q", k.Name, ident)
		}
	}

	if k.Policy != Reparent && k.Policy != Cascade {
		return fmt.Errorf("kind %s: unknown delete policy %v", k.Name, k.Policy)
	}
	return nil
}
