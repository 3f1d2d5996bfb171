package middleware

import (
	"errors"
	"net/http"

	"github.com/igrejacanaa/louvores/internal/permissao"
)

// RequireCapability resolve as permissões da conta autenticada e barra a
// requisição quando o seletor devolve falso. Contas super-admin passam
// por qualquer seletor.
func RequireCapability(resolver *permissao.Resolver, seletor func(permissao.Capabilities) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := GetSubject(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "AUTH", "sessão inválida")
				return
			}

			resultado, err := resolver.Resolve(r.Context(), subject, GetEmail(r.Context()))
			if err != nil {
				switch {
				case errors.Is(err, permissao.ErrNaoProvisionado):
					writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "usuário sem acesso provisionado")
				case errors.Is(err, permissao.ErrDesativado):
					writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "acesso desativado")
				default:
					writeAuthError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
				}
				return
			}

			if !resultado.SuperAdmin && !seletor(resultado.Capabilities) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "permissão insuficiente")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin exige a capacidade mínima de acessar o painel.
func RequireAdmin(resolver *permissao.Resolver) func(http.Handler) http.Handler {
	return RequireCapability(resolver, func(c permissao.Capabilities) bool {
		return c.AcessarAdmin
	})
}
