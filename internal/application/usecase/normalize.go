package usecase

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeCode deja códigos y SKUs en mayúsculas sin espacios en los extremos ("bod-ñ1" -> "BOD-Ñ1").
// cases.Caser guarda estado, por eso se crea uno por llamada.
func NormalizeCode(s string) string {
	return cases.Upper(language.Spanish).String(strings.TrimSpace(s))
}
