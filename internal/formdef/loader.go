// Package formdef reads form definitions from YAML or JSON files.
package formdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/validator"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Definition is the file shape of a form. Order fields are optional; when
// absent, position in the file is used.
type Definition struct {
	ID          string               `yaml:"id" json:"id"`
	Title       string               `yaml:"title" json:"title"`
	Description string               `yaml:"description" json:"description"`
	Access      string               `yaml:"access" json:"access"`
	Questions   []QuestionDefinition `yaml:"questions" json:"questions"`
}

type QuestionDefinition struct {
	ID       string             `yaml:"id" json:"id"`
	Text     string             `yaml:"text" json:"text"`
	Type     string             `yaml:"type" json:"type"`
	Required bool               `yaml:"required" json:"required"`
	Order    *int               `yaml:"order" json:"order"`
	Options  []OptionDefinition `yaml:"options" json:"options"`
}

// OptionDefinition accepts either a bare string or a mapping.
type OptionDefinition struct {
	ID    string `yaml:"id" json:"id"`
	Text  string `yaml:"text" json:"text"`
	Order *int   `yaml:"order" json:"order"`
}

func (o *OptionDefinition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Text = node.Value
		return nil
	}
	type plain OptionDefinition
	return node.Decode((*plain)(o))
}

func (o *OptionDefinition) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		o.Text = text
		return nil
	}
	type plain OptionDefinition
	return json.Unmarshal(data, (*plain)(o))
}

// Load reads a definition file, choosing the format from its extension.
func Load(path string) (*models.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form definition: %w", err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return Parse(data, format)
}

// Parse decodes a definition, assigns ids where they are missing and
// validates the result.
func Parse(data []byte, format Format) (*models.Form, error) {
	var def Definition
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse form definition: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse form definition: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported definition format: %s", format)
	}

	form := def.ToForm()
	if errs := validator.Default().Definition().ValidateForm(form); len(errs) > 0 {
		return nil, errs
	}
	return form, nil
}

// ToForm converts the definition into a form model.
func (d *Definition) ToForm() *models.Form {
	form := &models.Form{
		ID:          idOrNew(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Access:      models.FormAccess(strings.ToUpper(d.Access)),
		Questions:   make([]models.Question, 0, len(d.Questions)),
	}
	if form.Access == "" {
		form.Access = models.FormAccessPrivate
	}

	for i, qd := range d.Questions {
		q := models.Question{
			ID:       idOrNew(qd.ID),
			FormID:   form.ID,
			Text:     qd.Text,
			Type:     models.QuestionType(strings.ToUpper(qd.Type)),
			Required: qd.Required,
			Order:    orderOr(qd.Order, i),
		}
		for j, od := range qd.Options {
			q.Options = append(q.Options, models.Option{
				ID:         idOrNew(od.ID),
				QuestionID: q.ID,
				Text:       od.Text,
				Order:      orderOr(od.Order, j),
			})
		}
		form.Questions = append(form.Questions, q)
	}
	return form
}

func idOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func orderOr(order *int, position int) int {
	if order != nil {
		return *order
	}
	return position
}
