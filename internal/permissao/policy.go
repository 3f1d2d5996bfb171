package permissao

import "strings"

// Cargos reconhecidos pelo sistema.
const (
	CargoMembro      = "membro"
	CargoMusico      = "musico"
	CargoSeminarista = "seminarista"
	CargoPresbitero  = "presbitero"
	CargoPastor      = "pastor"
	CargoObreiro     = "obreiro"
	CargoAdmin       = "admin"
)

// Capabilities é o conjunto efetivo de permissões de um usuário.
type Capabilities struct {
	AcessarAdmin      bool `json:"pode_acessar_admin"`
	GerenciarUsuarios bool `json:"pode_gerenciar_usuarios"`
	GerenciarEscalas  bool `json:"pode_gerenciar_escalas"`
	GerenciarConteudo bool `json:"pode_gerenciar_conteudo"`
}

// Tabelas cargo -> capacidade. Mantidas como dados enumerados para que a
// semântica dos papéis fique auditável em um único lugar.
var (
	cargosAcessoAdmin = cargoSet(
		CargoMusico, CargoSeminarista, CargoPresbitero,
		CargoPastor, CargoObreiro, CargoAdmin,
	)
	cargosGerenciarUsuarios = cargoSet(CargoAdmin)
	cargosGerenciarEscalas  = cargoSet(CargoPresbitero, CargoPastor, CargoObreiro, CargoAdmin)
	cargosGerenciarConteudo = cargoSet(
		CargoMusico, CargoSeminarista, CargoPresbitero,
		CargoPastor, CargoObreiro, CargoAdmin,
	)
)

func cargoSet(cargos ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(cargos))
	for _, c := range cargos {
		set[c] = struct{}{}
	}
	return set
}

// IsValidCargo informa se o cargo é reconhecido.
func IsValidCargo(cargo string) bool {
	switch NormalizeCargo(cargo) {
	case CargoMembro, CargoMusico, CargoSeminarista, CargoPresbitero,
		CargoPastor, CargoObreiro, CargoAdmin:
		return true
	}
	return false
}

// NormalizeCargo padroniza o cargo informado.
func NormalizeCargo(cargo string) string {
	return strings.ToLower(strings.TrimSpace(cargo))
}

// Policy decide capacidades a partir do cargo e da lista imutável de
// super-admins injetada na construção.
type Policy struct {
	superAdmins map[string]struct{}
}

// NewPolicy cria a política com a lista de e-mails super-admin.
func NewPolicy(superAdmins []string) *Policy {
	set := make(map[string]struct{}, len(superAdmins))
	for _, email := range superAdmins {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			set[email] = struct{}{}
		}
	}
	return &Policy{superAdmins: set}
}

// IsSuperAdmin testa o e-mail contra a lista fixa, sem distinguir caixa.
func (p *Policy) IsSuperAdmin(email string) bool {
	_, ok := p.superAdmins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Resolve deriva o conjunto de capacidades. O curto-circuito de super-admin
// vem antes de qualquer consulta às tabelas de cargo: um super-admin pode
// nem sequer ter registro de acesso.
func (p *Policy) Resolve(cargo, email string) Capabilities {
	if p.IsSuperAdmin(email) {
		return Capabilities{
			AcessarAdmin:      true,
			GerenciarUsuarios: true,
			GerenciarEscalas:  true,
			GerenciarConteudo: true,
		}
	}

	cargo = NormalizeCargo(cargo)
	return Capabilities{
		AcessarAdmin:      contains(cargosAcessoAdmin, cargo),
		GerenciarUsuarios: contains(cargosGerenciarUsuarios, cargo),
		GerenciarEscalas:  contains(cargosGerenciarEscalas, cargo),
		GerenciarConteudo: contains(cargosGerenciarConteudo, cargo),
	}
}

func contains(set map[string]struct{}, cargo string) bool {
	_, ok := set[cargo]
	return ok
}
