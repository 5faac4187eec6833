package util

import (
	"strings"
	"unicode/utf16"
)

// MinFirstAccessPassword é o tamanho mínimo da senha escolhida no primeiro acesso.
const MinFirstAccessPassword = 4

// Blank informa se o valor é vazio após remover espaços.
func Blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// PasswordTooShort verifica a senha escolhida no primeiro acesso.
// O tamanho é contado em unidades UTF-16, como no formulário web: um emoji conta dois.
func PasswordTooShort(password string) bool {
	return len(utf16.Encode([]rune(password))) < MinFirstAccessPassword
}

// FirstBlank devolve o nome do primeiro campo vazio, na ordem informada.
func FirstBlank(fields ...[2]string) (string, bool) {
	for _, f := range fields {
		if Blank(f[1]) {
			return f[0], true
		}
	}
	return "", false
}
