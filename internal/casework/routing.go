package casework

import "strings"

// Department identifies the municipal unit a case is routed to.
type Department string

const (
	DeptDocumentation Department = "documentation"
	DeptVitalRecords  Department = "vital_records"
	DeptPermits       Department = "permits"
	DeptLegal         Department = "legal"
	DeptComplaints    Department = "complaints"
	DeptSpecialCases  Department = "special_cases"
)

// DisplayName returns the citizen-facing department name.
func (d Department) DisplayName() string {
	switch d {
	case DeptDocumentation:
		return "Departamento de Documentos"
	case DeptVitalRecords:
		return "Registro Civil"
	case DeptPermits:
		return "Departamento de Permisos"
	case DeptLegal:
		return "Asesoría Legal"
	case DeptComplaints:
		return "Departamento de Quejas"
	default:
		return "Casos Especiales"
	}
}

// Priority of a complex case.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// departmentRule pairs a department with its trigger keywords. Rules are
// evaluated in order and the first match wins, so precedence lives in the
// table itself rather than in map iteration order.
type departmentRule struct {
	department Department
	keywords   []string
}

// Vital-records keywords are checked ahead of the generic documentation list
// so "certificado de nacimiento" reaches Registro Civil instead of being
// swallowed by "certificado".
var departmentRules = []departmentRule{
	{DeptVitalRecords, []string{
		"nacimiento", "matrimonio", "defunción", "divorcio",
		"registro civil", "partida", "acta",
	}},
	{DeptDocumentation, []string{
		"certificado", "documento", "dni", "pasaporte",
		"cédula", "expediente", "registro",
	}},
	{DeptPermits, []string{
		"licencia", "permiso", "autorización", "trámite especial",
		"comercial", "construcción",
	}},
	{DeptLegal, []string{
		"demanda", "ley", "derecho", "conflicto", "recurso",
		"apelación", "procedimiento legal",
	}},
	{DeptComplaints, []string{
		"queja", "reclamo", "problema", "mal servicio",
		"denuncia", "irregularidad",
	}},
}

var highPriorityKeywords = []string{
	"urgente", "emergencia", "grave", "crítico", "inmediato",
	"violación", "peligro", "inaceptable",
}

var mediumPriorityKeywords = []string{
	"demora", "retraso", "seis meses", "tres meses", "meses",
	"mucho tiempo", "importante", "pronto", "necesito respuesta",
}

// RouteToDepartment maps free text to a department by first-match keyword
// lookup over the ordered rule table. Unmatched text goes to SpecialCases.
func RouteToDepartment(text string) Department {
	lower := strings.ToLower(text)
	for _, rule := range departmentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.department
			}
		}
	}
	return DeptSpecialCases
}

// DeterminePriority checks HIGH keywords before MEDIUM ones; text matching
// both resolves HIGH. Default is LOW.
func DeterminePriority(text string) Priority {
	lower := strings.ToLower(text)
	for _, keyword := range highPriorityKeywords {
		if strings.Contains(lower, keyword) {
			return PriorityHigh
		}
	}
	for _, keyword := range mediumPriorityKeywords {
		if strings.Contains(lower, keyword) {
			return PriorityMedium
		}
	}
	return PriorityLow
}
