package templates

// TemplateDefinition describes one entry in the static form catalog.
type TemplateDefinition struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	CategoryNumber int    `json:"categoryNumber"`
	SourceFile     string `json:"sourceFile"`
	SortKey        int    `json:"sortKey"`
	PageCount      int    `json:"pageCount"`
	CommonlyUsed   bool   `json:"commonlyUsed"`
	Implemented    bool   `json:"implemented"`
}

// FieldType enumerates the value types a template field can declare.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldSelect  FieldType = "select"
)

// Condition ops for field dependencies.
const (
	OpEquals      = "equals"
	OpNotEquals   = "notEquals"
	OpContains    = "contains"
	OpGreaterThan = "greaterThan"
	OpLessThan    = "lessThan"
)

// Condition gates a field on the resolved value of a sibling field.
type Condition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Validation constrains a field value after type coercion.
type Validation struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength int      `json:"minLength,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Placement positions a field's rendered value on a page, in PDF points
// measured from the lower-left corner.
type Placement struct {
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize,omitempty"`
}

// FieldDescriptor declares one data point a template requires.
type FieldDescriptor struct {
	Name       string      `json:"name"`
	Type       FieldType   `json:"type"`
	Label      string      `json:"label"`
	Required   bool        `json:"required"`
	Section    string      `json:"section,omitempty"`
	Default    any         `json:"default,omitempty"`
	Validation *Validation `json:"validation,omitempty"`
	Options    []string    `json:"options,omitempty"`
	DependsOn  *Condition  `json:"dependsOn,omitempty"`
	Placement  *Placement  `json:"placement,omitempty"`
}

// SignatureField is a positioned placeholder where a signer's mark is recorded.
type SignatureField struct {
	ID       string  `json:"id"`
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Role     string  `json:"role"`
	Type     string  `json:"type"` // signature | initials
	Required bool    `json:"required"`
	Group    string  `json:"group,omitempty"`
}

// FieldSchema is the full field/signature layout for one template.
type FieldSchema struct {
	TemplateCode string           `json:"templateCode"`
	PageCount    int              `json:"pageCount"`
	AllowUnknown bool             `json:"allowUnknown"`
	Fields       []FieldDescriptor `json:"fields"`
	Signatures   []SignatureField `json:"signatures"`
}

// Field returns the descriptor with the given name, if declared.
func (s FieldSchema) Field(name string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}
