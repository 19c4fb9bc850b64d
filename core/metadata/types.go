package metadata

// FieldType identifies the capability class of a model field. The values
// mirror PocketBase field type tags so a collection can be converted without
// a translation table.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEditor   FieldType = "editor" // long-form rich text
	FieldTypeNumber   FieldType = "number"
	FieldTypeBool     FieldType = "bool"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
	FieldTypeDate     FieldType = "date"
	FieldTypeAutodate FieldType = "autodate"
	FieldTypeSelect   FieldType = "select" // enum with declared options
	FieldTypeFile     FieldType = "file"   // binary attachments, images included
	FieldTypeRelation FieldType = "relation"
	FieldTypeJSON     FieldType = "json"
	FieldTypePassword FieldType = "password"
	FieldTypeID       FieldType = "id"
)

// Field describes a single model field as seen by the request pipeline.
type Field struct {
	Name        string
	Type        FieldType
	Persistent  bool     // false for computed or hidden fields
	Options     []string // declared values for select/enum fields
	Required    bool
	Description string
}

// Model is the static description of a model consumed by the validators,
// the authorization gate and the generic model controller. It is built once
// per registry build and treated as read-only afterwards.
type Model struct {
	Name            string
	DisplayName     string
	Table           string
	Fields          map[string]Field
	FieldOrder      []string
	RolesAndActions map[string][]string // role -> granted actions, "*" grants all
	Routes          []RouteDeclaration
}

// Field returns the descriptor for name, if the model declares it.
func (m *Model) Field(name string) (Field, bool) {
	f, ok := m.Fields[name]
	return f, ok
}

// RouteDeclaration is the raw form of a route as declared by a controller's
// route table or a model spec. The registry validates it and compiles it
// into an immutable Route.
type RouteDeclaration struct {
	Method         string
	Path           string
	Controller     string
	Handler        string
	ParameterNames []string
	AllowedRoles   []string // empty or containing "*" means public
	Action         string   // explicit RBAC action, overrides the method mapping
	Description    string
}

// ModelSpec is the declarative registration a model contributes to the
// gateway: which collection backs it, which routes it exposes and which
// roles may do what.
type ModelSpec struct {
	Name            string // collection name
	DisplayName     string
	RolesAndActions map[string][]string
	Routes          []RouteDeclaration
}

// Provider resolves model metadata by name. The gateway implements it on top
// of PocketBase collections; tests implement it with fixtures.
type Provider interface {
	ModelNames() []string
	Model(name string) (*Model, error)
}
