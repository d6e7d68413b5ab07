package users

import "github.com/staffdesk/staffdesk/internal/shared"

// The user resource is described once, declaratively: the same descriptors
// drive the schema endpoint consumed by the presentation layer and the
// field-level validation applied on create/edit submissions.

// FieldKind identifies the input widget a field maps to.
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldEmail       FieldKind = "email"
	FieldPassword    FieldKind = "password"
	FieldToggle      FieldKind = "toggle"
	FieldMultiSelect FieldKind = "multiselect"
)

// Field describes one form input with its validation rules co-located.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	CreateRules string    `json:"create_rules,omitempty"`
	EditRules   string    `json:"edit_rules,omitempty"`
	Default     any       `json:"default,omitempty"`
	WriteOnly   bool      `json:"-"`
	// VisibleWith gates the field behind a permission; empty means always.
	VisibleWith string `json:"-"`
	// OptionsFrom names a dynamic option source for select fields.
	OptionsFrom string `json:"options_from,omitempty"`
}

// ColumnKind identifies how a listing column renders.
type ColumnKind string

const (
	ColumnText      ColumnKind = "text"
	ColumnBoolean   ColumnKind = "boolean"
	ColumnBadges    ColumnKind = "badges"
	ColumnTimestamp ColumnKind = "timestamp"
)

// Column describes one listing column.
type Column struct {
	Key         string            `json:"key"`
	Label       string            `json:"label"`
	Kind        ColumnKind        `json:"kind"`
	Searchable  bool              `json:"searchable,omitempty"`
	Sortable    bool              `json:"sortable,omitempty"`
	Hidden      bool              `json:"hidden,omitempty"`
	Format      string            `json:"format,omitempty"`
	BadgeColors map[string]string `json:"badge_colors,omitempty"`
	BadgeOther  string            `json:"badge_other,omitempty"`
}

// FilterKind identifies a listing filter widget.
type FilterKind string

const (
	FilterTernary     FilterKind = "ternary"
	FilterMultiSelect FilterKind = "multiselect"
)

// Filter describes one listing filter.
type Filter struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Kind        FilterKind `json:"kind"`
	OptionsFrom string     `json:"options_from,omitempty"`
}

// Action describes a row or bulk action with its access gate.
type Action struct {
	Key        string `json:"key"`
	Permission string `json:"-"`
	// DeniesSelf hides the action on the row of the acting user.
	DeniesSelf bool `json:"denies_self,omitempty"`
}

// FormFields returns the ordered form schema for the user resource.
func FormFields() []Field {
	return []Field{
		{
			Key:         "name",
			Label:       "Name",
			Kind:        FieldText,
			CreateRules: "required,max=255",
			EditRules:   "required,max=255",
		},
		{
			Key:         "email",
			Label:       "Email",
			Kind:        FieldEmail,
			CreateRules: "required,email,max=255",
			EditRules:   "required,email,max=255",
		},
		{
			Key:         "password",
			Label:       "Password",
			Kind:        FieldPassword,
			CreateRules: "required,min=8",
			EditRules:   "omitempty,min=8",
			WriteOnly:   true,
		},
		{
			Key:     "is_active",
			Label:   "Active",
			Kind:    FieldToggle,
			Default: true,
		},
		{
			Key:         "roles",
			Label:       "Roles",
			Kind:        FieldMultiSelect,
			OptionsFrom: "roles",
			VisibleWith: shared.PermManagePermissions,
		},
	}
}

// Columns returns the listing schema for the user resource.
func Columns() []Column {
	return []Column{
		{Key: "name", Label: "Name", Kind: ColumnText, Searchable: true, Sortable: true},
		{Key: "email", Label: "Email", Kind: ColumnText, Searchable: true, Sortable: true},
		{Key: "is_active", Label: "Active", Kind: ColumnBoolean, Sortable: true},
		{
			Key:   "roles",
			Label: "Roles",
			Kind:  ColumnBadges,
			BadgeColors: map[string]string{
				shared.RoleAdmin: "danger",
				shared.RoleUser:  "success",
			},
			BadgeOther: "gray",
		},
		{Key: "created_at", Label: "Created", Kind: ColumnTimestamp, Sortable: true, Hidden: true, Format: "02/01/2006 15:04"},
	}
}

// Filters returns the listing filter schema.
func Filters() []Filter {
	return []Filter{
		{Key: "is_active", Label: "Status", Kind: FilterTernary},
		{Key: "roles", Label: "Roles", Kind: FilterMultiSelect, OptionsFrom: "roles"},
	}
}

// RowActions returns the per-row actions with their access gates.
func RowActions() []Action {
	return []Action{
		{Key: "view", Permission: shared.PermViewUsers},
		{Key: "edit", Permission: shared.PermEditUsers},
		{Key: "delete", Permission: shared.PermDeleteUsers, DeniesSelf: true},
	}
}

// BulkActions returns the bulk actions with their access gates.
func BulkActions() []Action {
	return []Action{
		{Key: "delete", Permission: shared.PermDeleteUsers, DeniesSelf: true},
	}
}

// SortColumn maps a requested sort key onto a listing column, falling back
// to name. Only sortable columns are accepted.
func SortColumn(key string) string {
	for _, c := range Columns() {
		if c.Sortable && c.Key == key {
			return c.Key
		}
	}
	return "name"
}
