package naming

import (
	"maps"
	"strings"
)

// DefaultTerms is the built-in Portuguese payroll vocabulary. The words that
// prefix rules suggest ("codigo") are deliberately absent so a translated
// name is not translated again on a second pass.
var DefaultTerms = map[string]string{
	"folha":       "Payroll",
	"calculo":     "Calculation",
	"calc":        "Calculate",
	"calcular":    "Calculate",
	"salario":     "Salary",
	"desconto":    "Discount",
	"imposto":     "Tax",
	"inss":        "Inss",
	"fgts":        "Fgts",
	"irrf":        "Irrf",
	"empresa":     "Company",
	"empregado":   "Employee",
	"funcionario": "Employee",
	"parametro":   "Parameter",
	"base":        "Base",
	"valor":       "Value",
	"taxa":        "Rate",
	"sistema":     "System",
	"config":      "Config",
	"dados":       "Data",
	"teste":       "Test",
	"executor":    "Executor",
	"memoria":     "Memory",
	"provisao":    "Provision",
	"encargo":     "Charge",
}

// DefaultMethods is the direct legacy-to-canonical method name table.
var DefaultMethods = map[string]string{
	"of_calc_payroll": "calculatePayroll",
	"of_execute_test": "executeTest",
	"of_inicializa":   "initialize",
	"of_finaliza":     "finalize",
	"of_conectar":     "connect",
	"of_desconectar":  "disconnect",
	"of_processar":    "process",
	"of_validar":      "validate",
	"of_calcular":     "calculate",
}

// Dictionary is an immutable, case-insensitive term table.
type Dictionary struct {
	terms map[string]string
}

// NewDictionary copies terms into a Dictionary. Keys are folded to lower case.
func NewDictionary(terms map[string]string) Dictionary {
	folded := make(map[string]string, len(terms))
	for k, v := range terms {
		folded[strings.ToLower(k)] = v
	}

	return Dictionary{terms: folded}
}

// Lookup returns the target term for word, ignoring case.
func (d Dictionary) Lookup(word string) (string, bool) {
	v, ok := d.terms[strings.ToLower(word)]

	return v, ok
}

// Len returns the number of terms.
func (d Dictionary) Len() int {
	return len(d.terms)
}

// Terms returns a copy of the term table.
func (d Dictionary) Terms() map[string]string {
	return maps.Clone(d.terms)
}

// apply substitutes whole words, each position at most once. Words before
// skip are left verbatim.
func (d Dictionary) apply(words []string, skip int) []string {
	out := make([]string, len(words))
	copy(out, words)

	for i := skip; i < len(out); i++ {
		if target, ok := d.Lookup(out[i]); ok {
			out[i] = matchCase(out[i], target)
		}
	}

	return out
}
