package util

import "strings"

// UnformatPhone remove tudo que não for dígito. Forma de armazenamento.
func UnformatPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone aplica a máscara brasileira de exibição:
// 11 dígitos -> (DD) DDDDD-DDDD, 10 dígitos -> (DD) DDDD-DDDD.
// Entradas parciais são devolvidas apenas com os dígitos.
func FormatPhone(raw string) string {
	digits := UnformatPhone(raw)
	switch len(digits) {
	case 11:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	case 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	default:
		return digits
	}
}

// IsValidPhone aceita números fixos (10 dígitos) e celulares (11 dígitos).
func IsValidPhone(raw string) bool {
	n := len(UnformatPhone(raw))
	return n == 10 || n == 11
}
