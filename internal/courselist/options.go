package courselist

// Option is a selectable value with an optional display label.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Display returns the label, or the value when no label is set.
func (o Option) Display() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// Options are the values offered by each filter control.
type Options struct {
	Departments []string
	Grades      []Option
	Classes     []string
}

// Placeholder labels for the empty choice of each control.
const (
	PlaceholderDepartment = "選擇系所"
	PlaceholderGrade      = "年級 (全)"
	PlaceholderClass      = "班級 (全)"
)

// Choices returns the options of field, empty choice first.
func (o Options) Choices(field Field) []Option {
	var placeholder string
	var values []Option
	switch field {
	case FieldDepartment:
		placeholder = PlaceholderDepartment
		values = plain(o.Departments)
	case FieldGrade:
		placeholder = PlaceholderGrade
		values = o.Grades
	case FieldClass:
		placeholder = PlaceholderClass
		values = plain(o.Classes)
	default:
		return nil
	}
	return append([]Option{{Value: "", Label: placeholder}}, values...)
}

func plain(values []string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v}
	}
	return out
}
