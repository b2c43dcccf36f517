// Package formapi describes a form's submission endpoint as an OpenAPI 3
// document, so external clients can generate their own payload types.
package formapi

import (
	"fmt"

	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	OpenAPIVersion = "3.0.3"

	valuesSchema       = "Values"
	answerSchema       = "Answer"
	submitSchema       = "SubmitRequest"
	submitResultSchema = "SubmitResult"
	fieldErrorSchema   = "FieldError"

	e164Pattern         = `^\+[1-9]\d{1,14}$`
	optionalE164Pattern = `^(\+[1-9]\d{1,14})?$`
)

func schemaRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

// Document builds the OpenAPI description of the submit and validate
// endpoints of form.
func Document(form *models.Form, registry *formschema.Registry) *openapi3.T {
	if registry == nil {
		registry = formschema.Default()
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		valuesSchema:       openapi3.NewSchemaRef("", ValuesSchema(form, registry)),
		answerSchema:       openapi3.NewSchemaRef("", answerInputSchema()),
		submitSchema:       openapi3.NewSchemaRef("", submitRequestSchema()),
		submitResultSchema: openapi3.NewSchemaRef("", submitResultSchemaValue()),
		fieldErrorSchema:   openapi3.NewSchemaRef("", fieldErrorSchemaValue()),
	}

	idParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())}
	errorList := openapi3.NewArraySchema()
	errorList.Items = schemaRef(fieldErrorSchema)

	submit := &openapi3.Operation{
		OperationID: "submitResponse",
		Summary:     "Submit a response to " + form.Title,
		Parameters:  openapi3.Parameters{idParam},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schemaRef(submitSchema)),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(201, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Response stored").WithJSONSchemaRef(schemaRef(submitResultSchema)),
			}),
			openapi3.WithStatus(400, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Validation failed"),
			}),
			openapi3.WithStatus(404, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Form not found"),
			}),
		),
	}

	validate := &openapi3.Operation{
		OperationID: "validateValues",
		Summary:     "Check raw values without storing them",
		Parameters:  openapi3.Parameters{idParam},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schemaRef(valuesSchema)),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Field errors, empty when valid").WithJSONSchema(
					openapi3.NewObjectSchema().
						WithProperty("valid", openapi3.NewBoolSchema()).
						WithProperty("errors", errorList),
				),
			}),
		),
	}

	return &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       form.Title,
			Description: form.Description,
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/api/v1/forms/{id}/responses", &openapi3.PathItem{Post: submit}),
			openapi3.WithPath("/api/v1/forms/{id}/validate", &openapi3.PathItem{Post: validate}),
		),
		Components: &components,
	}
}

// ValuesSchema is the object schema of a raw FormState for form: one
// property per question in display order.
func ValuesSchema(form *models.Form, registry *formschema.Registry) *openapi3.Schema {
	questions := models.SortedQuestions(form.Questions)
	descriptors := registry.BuildSchema(questions).Describe()
	byID := make(map[string]*models.Question, len(questions))
	for i := range questions {
		if _, dup := byID[questions[i].ID]; !dup {
			byID[questions[i].ID] = &questions[i]
		}
	}

	out := openapi3.NewObjectSchema()
	for _, d := range descriptors {
		q := byID[d.QuestionID]
		prop := propertySchema(d, q)
		prop.Title = q.Text
		out.WithProperty(d.QuestionID, prop)
		if d.Required {
			out.Required = append(out.Required, d.QuestionID)
		}
	}
	return out
}

func propertySchema(d formschema.RuleDescriptor, q *models.Question) *openapi3.Schema {
	var s *openapi3.Schema
	switch d.Kind {
	case formschema.KindString:
		s = openapi3.NewStringSchema()
		// Dates also accept RFC 3339 timestamps, so "date" is not declared
		// as a format.
		switch d.Format {
		case "email":
			s.Format = d.Format
		case "e164":
			s.Pattern = e164Pattern
			if !d.Required {
				s.Pattern = optionalE164Pattern
			}
		}
		if d.MinLength > 0 {
			s.WithMinLength(int64(d.MinLength))
		}
	case formschema.KindNumber:
		s = openapi3.NewFloat64Schema()
	case formschema.KindBoolean:
		s = openapi3.NewBoolSchema()
	case formschema.KindOption:
		s = openapi3.NewStringSchema().WithEnum(optionEnum(q, !d.Required)...)
	case formschema.KindOptions:
		s = openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema().WithEnum(optionEnum(q, false)...))
		s.UniqueItems = true
		if d.MinLength > 0 {
			s.WithMinItems(int64(d.MinLength))
		}
	default:
		s = &openapi3.Schema{}
	}
	if d.Nullable {
		s.Nullable = true
	}
	if d.Message != "" {
		s.Description = d.Message
	}
	return s
}

func optionEnum(q *models.Question, allowEmpty bool) []interface{} {
	values := make([]interface{}, 0, len(q.Options)+1)
	if allowEmpty {
		values = append(values, "")
	}
	for _, opt := range models.SortedOptions(q.Options) {
		values = append(values, opt.ID)
	}
	return values
}

func answerInputSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("questionId", openapi3.NewStringSchema()).
		WithProperty(string(formschema.SlotText), openapi3.NewStringSchema()).
		WithProperty(string(formschema.SlotBool), openapi3.NewBoolSchema()).
		WithProperty(string(formschema.SlotNumber), openapi3.NewFloat64Schema()).
		WithProperty(string(formschema.SlotDate), openapi3.NewStringSchema().WithFormat("date")).
		WithProperty(string(formschema.SlotOptions), openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	s.Required = []string{"questionId"}
	s.Description = fmt.Sprintf("Exactly one of %s, %s, %s, %s or %s is set.",
		formschema.SlotText, formschema.SlotBool, formschema.SlotNumber, formschema.SlotDate, formschema.SlotOptions)
	return s
}

func submitRequestSchema() *openapi3.Schema {
	answers := openapi3.NewArraySchema()
	answers.Items = schemaRef(answerSchema)

	s := openapi3.NewObjectSchema().WithProperty("answers", answers)
	s.Properties["values"] = schemaRef(valuesSchema)
	s.Description = "Either normalized answers or raw values keyed by question id."
	return s
}

func submitResultSchemaValue() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("responseId", openapi3.NewStringSchema()).
		WithProperty("createdAt", openapi3.NewDateTimeSchema())
}

func fieldErrorSchemaValue() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("rule", openapi3.NewStringSchema())
}
