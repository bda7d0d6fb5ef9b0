package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps json field names to the labels shown to recruiters
var FieldLabels = map[string]string{
	// Curriculum
	"nombre":           "Nombre",
	"apellido":         "Apellido",
	"email":            "Email",
	"celular":          "Celular",
	"fecha_nacimiento": "Fecha de nacimiento",
	"pais":             "País",
	"provincia":        "Provincia",
	"zona":             "Zona",
	"localidad":        "Localidad",
	"rubro":            "Rubro",
	"subrubro":         "Subrubro",
	"puesto":           "Puesto",
	"calificacion":     "Calificación",
	"estudios":         "Estudios",
	"experiencia":      "Experiencia",
	"idiomas":          "Idiomas",
	"comentarios":      "Comentarios",
	"archivo":          "Archivo",

	// Lista
	"cliente":      "Cliente",
	"comentario":   "Comentario",
	"fecha_limite": "Fecha límite",
	"color":        "Color",

	// Auth
	"password": "Contraseña",
}

// enumLabels turns stored enum slugs into readable options
var enumLabels = map[string]string{
	"excelente":     "Excelente",
	"muy_bueno":     "Muy bueno",
	"bueno":         "Bueno",
	"regular":       "Regular",
	"malo":          "Malo",
	"primario":      "Primario",
	"secundario":    "Secundario",
	"terciario":     "Terciario",
	"universitario": "Universitario",
	"posgrado":      "Posgrado",
}

// FieldErrors converts validator.ValidationErrors into a field → message
// map keyed by json field name. Other errors land under "_".
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		out["_"] = err.Error()
		return out
	}
	for _, e := range validationErrors {
		field := fieldKey(e)
		if _, exists := out[field]; exists {
			continue
		}
		out[field] = formatSingleError(e)
	}
	return out
}

// FormatValidationErrors returns the same messages as a flat list
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// fieldKey keeps the index of slice elements, e.g. idiomas[2]
func fieldKey(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: Campo obligatorio", label)

	case "required_if":
		return fmt.Sprintf("%s: Obligatorio cuando %s", label, formatRequiredIf(param))

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Mínimo %s caracteres", label, param)
		}
		return fmt.Sprintf("%s: Mínimo %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Máximo %s caracteres", label, param)
		}
		return fmt.Sprintf("%s: Máximo %s elementos", label, param)

	case "oneof":
		return fmt.Sprintf("%s: Debe ser uno de: %s", label, formatOneOfOptions(param))

	case "email":
		return fmt.Sprintf("%s: Formato de email inválido", label)

	case "datetime":
		return fmt.Sprintf("%s: Fecha inválida (AAAA-MM-DD)", label)

	case "valid_name":
		return fmt.Sprintf("%s: Solo letras, espacios y los signos . ' -", label)

	case "valid_phone":
		return fmt.Sprintf("%s: Número inválido (7 a 15 dígitos, con o sin +)", label)

	case "hex_color":
		return fmt.Sprintf("%s: Debe tener el formato #RRGGBB", label)

	default:
		return fmt.Sprintf("%s: Valor inválido (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return strings.ReplaceAll(fieldName, "_", " ")
}

// formatRequiredIf renders "Pais Argentina" as "País es Argentina"
func formatRequiredIf(param string) string {
	parts := strings.Fields(param)
	if len(parts) < 2 {
		return param
	}
	return fmt.Sprintf("%s es %s", getFieldLabel(strings.ToLower(parts[0])), strings.Join(parts[1:], " "))
}

func formatOneOfOptions(param string) string {
	options := strings.Fields(param)
	formatted := make([]string, len(options))
	for i, opt := range options {
		if label, ok := enumLabels[opt]; ok {
			formatted[i] = label
		} else {
			formatted[i] = opt
		}
	}
	return strings.Join(formatted, ", ")
}
