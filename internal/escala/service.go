package escala

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/pessoa"
	"github.com/igrejacanaa/louvores/internal/tags"
)

type repository interface {
	GetByData(ctx context.Context, data time.Time) (*Escala, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Escala, error)
	List(ctx context.Context, aPartirDe time.Time) ([]Escala, error)
	Create(ctx context.Context, data time.Time, titulo string) (*Escala, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListFuncoes(ctx context.Context, escalaID uuid.UUID) ([]Funcao, error)
	AddFuncao(ctx context.Context, escalaID, tagID, pessoaID uuid.UUID, ordem int) (*Funcao, error)
	SetConfirmado(ctx context.Context, funcaoID uuid.UUID, confirmado bool) error
	RemoveFuncao(ctx context.Context, funcaoID uuid.UUID) error
}

type tagStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]tags.Tag, error)
}

type pessoaStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]pessoa.Pessoa, error)
}

// Service monta a visão agregada da escala e coordena sua gestão.
type Service struct {
	repo    repository
	tags    tagStore
	pessoas pessoaStore
}

func NewService(repo repository, tagStore tagStore, pessoaStore pessoaStore) *Service {
	return &Service{repo: repo, tags: tagStore, pessoas: pessoaStore}
}

// GetPorData monta a visão da escala de uma data. Ausência de escala é
// um resultado normal (Existe falso), não um erro. As funções são
// resolvidas com duas buscas em lote e junção em memória; referências a
// registros removidos degradam para placeholders.
func (s *Service) GetPorData(ctx context.Context, data time.Time) (*View, error) {
	e, err := s.repo.GetByData(ctx, data)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &View{Existe: false}, nil
		}
		return nil, err
	}

	funcoes, err := s.repo.ListFuncoes(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	grupos, err := s.montarGrupos(ctx, funcoes)
	if err != nil {
		return nil, err
	}

	return &View{Existe: true, Escala: e, Grupos: grupos}, nil
}

func (s *Service) montarGrupos(ctx context.Context, funcoes []Funcao) ([]Grupo, error) {
	if len(funcoes) == 0 {
		return nil, nil
	}

	tagIDs := make([]uuid.UUID, 0, len(funcoes))
	pessoaIDs := make([]uuid.UUID, 0, len(funcoes))
	vistosTag := map[uuid.UUID]bool{}
	vistosPessoa := map[uuid.UUID]bool{}
	for _, f := range funcoes {
		if !vistosTag[f.TagID] {
			vistosTag[f.TagID] = true
			tagIDs = append(tagIDs, f.TagID)
		}
		if !vistosPessoa[f.PessoaID] {
			vistosPessoa[f.PessoaID] = true
			pessoaIDs = append(pessoaIDs, f.PessoaID)
		}
	}

	tagList, err := s.tags.GetByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	pessoaList, err := s.pessoas.GetByIDs(ctx, pessoaIDs)
	if err != nil {
		return nil, err
	}

	tagPorID := make(map[uuid.UUID]tags.Tag, len(tagList))
	for _, t := range tagList {
		tagPorID[t.ID] = t
	}
	pessoaPorID := make(map[uuid.UUID]pessoa.Pessoa, len(pessoaList))
	for _, p := range pessoaList {
		pessoaPorID[p.ID] = p
	}

	porCategoria := map[string][]FuncaoView{}
	for _, f := range funcoes {
		view := FuncaoView{
			ID:         f.ID,
			TagID:      f.TagID,
			PessoaID:   f.PessoaID,
			Ordem:      f.Ordem,
			Confirmado: f.Confirmado,
		}

		categoria := CategoriaRemovida
		view.TagNome = TagRemovida
		if t, ok := tagPorID[f.TagID]; ok {
			categoria = t.Categoria
			view.TagNome = t.Nome
		}

		view.PessoaNome = PessoaRemovida
		if p, ok := pessoaPorID[f.PessoaID]; ok {
			view.PessoaNome = p.Nome
		}

		porCategoria[categoria] = append(porCategoria[categoria], view)
	}

	var grupos []Grupo
	for _, categoria := range tags.CategoriasOrdenadas {
		if funcs, ok := porCategoria[categoria]; ok {
			grupos = append(grupos, Grupo{
				Categoria: categoria,
				Label:     tags.LabelsCategoria[categoria],
				Funcoes:   funcs,
			})
		}
	}
	if funcs, ok := porCategoria[CategoriaRemovida]; ok {
		grupos = append(grupos, Grupo{
			Categoria: CategoriaRemovida,
			Label:     LabelRemovida,
			Funcoes:   funcs,
		})
	}
	return grupos, nil
}

// Listar devolve as escalas a partir de hoje quando aPartirDe é zero.
func (s *Service) Listar(ctx context.Context, aPartirDe time.Time) ([]Escala, error) {
	if aPartirDe.IsZero() {
		aPartirDe = time.Now().Truncate(24 * time.Hour)
	}
	return s.repo.List(ctx, aPartirDe)
}

func (s *Service) Criar(ctx context.Context, data time.Time, titulo string) (*Escala, error) {
	titulo = strings.TrimSpace(titulo)
	if titulo == "" {
		return nil, ErrTituloObrigatorio
	}
	if data.IsZero() {
		return nil, ErrDataInvalida
	}
	return s.repo.Create(ctx, data, titulo)
}

func (s *Service) AlterarStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != StatusRascunho && status != StatusPublicada {
		return ErrStatusInvalido
	}
	return s.repo.SetStatus(ctx, id, status)
}

func (s *Service) Remover(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AtribuirFuncao(ctx context.Context, escalaID, tagID, pessoaID uuid.UUID, ordem int) (*Funcao, error) {
	if _, err := s.repo.GetByID(ctx, escalaID); err != nil {
		return nil, err
	}
	return s.repo.AddFuncao(ctx, escalaID, tagID, pessoaID, ordem)
}

func (s *Service) ConfirmarFuncao(ctx context.Context, funcaoID uuid.UUID, confirmado bool) error {
	return s.repo.SetConfirmado(ctx, funcaoID, confirmado)
}

func (s *Service) RemoverFuncao(ctx context.Context, funcaoID uuid.UUID) error {
	return s.repo.RemoveFuncao(ctx, funcaoID)
}
