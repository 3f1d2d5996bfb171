package auth

import (
	"github.com/alexedwards/argon2id"
)

// Parâmetros de custo do Argon2id usados em todo hash de senha novo.
// Hashes antigos continuam verificáveis: os parâmetros ficam embutidos
// no próprio hash.
var hashParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera o hash Argon2id da senha de uma conta.
func Hash(senha string) (string, error) {
	return argon2id.CreateHash(senha, hashParams)
}

// Verify compara a senha informada no login com o hash armazenado.
func Verify(senha, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(senha, hash)
}
