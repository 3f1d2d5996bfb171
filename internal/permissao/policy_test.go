package permissao

import "testing"

func TestIsSuperAdmin_CaseInsensitive(t *testing.T) {
	policy := NewPolicy([]string{"admin@example.com"})

	if !policy.IsSuperAdmin("admin@example.com") {
		t.Fatal("expected lowercase email to match")
	}
	if !policy.IsSuperAdmin("Admin@Example.com") {
		t.Fatal("expected mixed-case email to match")
	}
	if policy.IsSuperAdmin("outro@example.com") {
		t.Fatal("expected unknown email to not match")
	}
}

func TestResolve_Membro_SemCapacidades(t *testing.T) {
	policy := NewPolicy(nil)
	caps := policy.Resolve(CargoMembro, "membro@example.com")

	if caps.AcessarAdmin || caps.GerenciarUsuarios || caps.GerenciarEscalas || caps.GerenciarConteudo {
		t.Fatalf("expected membro to have no capabilities, got %+v", caps)
	}
}

func TestResolve_Admin_TodasCapacidades(t *testing.T) {
	policy := NewPolicy(nil)
	caps := policy.Resolve(CargoAdmin, "a@example.com")

	if !caps.AcessarAdmin || !caps.GerenciarUsuarios || !caps.GerenciarEscalas || !caps.GerenciarConteudo {
		t.Fatalf("expected admin to have all capabilities, got %+v", caps)
	}
}

func TestResolve_TabelaDeCargos(t *testing.T) {
	policy := NewPolicy(nil)

	cases := []struct {
		cargo                                   string
		admin, usuarios, escalas, conteudo bool
	}{
		{CargoMembro, false, false, false, false},
		{CargoMusico, true, false, false, true},
		{CargoSeminarista, true, false, false, true},
		{CargoPresbitero, true, false, true, true},
		{CargoPastor, true, false, true, true},
		{CargoObreiro, true, false, true, true},
		{CargoAdmin, true, true, true, true},
	}

	for _, tc := range cases {
		caps := policy.Resolve(tc.cargo, "x@example.com")
		if caps.AcessarAdmin != tc.admin || caps.GerenciarUsuarios != tc.usuarios ||
			caps.GerenciarEscalas != tc.escalas || caps.GerenciarConteudo != tc.conteudo {
			t.Fatalf("cargo %s: got %+v", tc.cargo, caps)
		}
	}
}

func TestResolve_SuperAdminIgnoraCargo(t *testing.T) {
	policy := NewPolicy([]string{"super@example.com"})
	caps := policy.Resolve(CargoMembro, "super@example.com")

	if !caps.GerenciarUsuarios {
		t.Fatal("expected super-admin to manage users regardless of cargo")
	}
	if !caps.AcessarAdmin || !caps.GerenciarEscalas || !caps.GerenciarConteudo {
		t.Fatalf("expected super-admin full capabilities, got %+v", caps)
	}
}

func TestIsValidCargo(t *testing.T) {
	if !IsValidCargo("Pastor") {
		t.Fatal("expected pastor (any case) to be valid")
	}
	if IsValidCargo("bispo") {
		t.Fatal("expected unknown cargo to be invalid")
	}
}
