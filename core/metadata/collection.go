package metadata

import (
	"github.com/pocketbase/pocketbase/core"
)

// system field names that PocketBase manages internally and that must never
// be exposed to filtering or search
var hiddenSystemFields = map[string]bool{
	"tokenKey":        true,
	"emailVisibility": true,
}

// FromCollection converts a PocketBase collection plus its registered spec
// into a static Model. The conversion happens once per registry build; the
// pipeline never touches core.Collection afterwards.
func FromCollection(col *core.Collection, spec ModelSpec) *Model {
	m := &Model{
		Name:            col.Name,
		DisplayName:     spec.DisplayName,
		Table:           col.Name,
		Fields:          make(map[string]Field, len(col.Fields)+1),
		FieldOrder:      make([]string, 0, len(col.Fields)+1),
		RolesAndActions: spec.RolesAndActions,
		Routes:          spec.Routes,
	}
	if m.DisplayName == "" {
		m.DisplayName = col.Name
	}

	// the implicit primary key
	m.addField(Field{Name: "id", Type: FieldTypeID, Persistent: true})

	for _, f := range col.Fields {
		name := f.GetName()
		if name == "id" || hiddenSystemFields[name] {
			continue
		}
		fd := Field{
			Name:       name,
			Type:       fieldTypeOf(f),
			Persistent: !f.GetHidden(),
		}
		if sel, ok := f.(*core.SelectField); ok {
			fd.Options = append([]string{}, sel.Values...)
		}
		m.addField(fd)
	}

	return m
}

func (m *Model) addField(f Field) {
	if _, exists := m.Fields[f.Name]; exists {
		return
	}
	m.Fields[f.Name] = f
	m.FieldOrder = append(m.FieldOrder, f.Name)
}

func fieldTypeOf(f core.Field) FieldType {
	switch f.Type() {
	case "text":
		return FieldTypeText
	case "editor":
		return FieldTypeEditor
	case "number":
		return FieldTypeNumber
	case "bool":
		return FieldTypeBool
	case "email":
		return FieldTypeEmail
	case "url":
		return FieldTypeURL
	case "date":
		return FieldTypeDate
	case "autodate":
		return FieldTypeAutodate
	case "select":
		return FieldTypeSelect
	case "file":
		return FieldTypeFile
	case "relation":
		return FieldTypeRelation
	case "json":
		return FieldTypeJSON
	case "password":
		return FieldTypePassword
	default:
		// unknown future field types stay queryable as plain text
		return FieldTypeText
	}
}
