package knowledgesrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siivi-app/siivi-server/pkg/kernel"
	"github.com/siivi-app/siivi-server/pkg/knowledge"
)

// KnowledgeService administra las tarjetas de conocimiento del owner
type KnowledgeService struct {
	repo knowledge.Repository
	now  func() time.Time
}

// NewKnowledgeService crea el servicio de tarjetas
func NewKnowledgeService(repo knowledge.Repository) *KnowledgeService {
	return &KnowledgeService{
		repo: repo,
		now:  time.Now,
	}
}

// NewKnowledgeServiceWithNow permite inyectar el reloj (tests)
func NewKnowledgeServiceWithNow(repo knowledge.Repository, now func() time.Time) *KnowledgeService {
	s := NewKnowledgeService(repo)
	s.now = now
	return s
}

// Create crea una tarjeta nueva
func (s *KnowledgeService) Create(ctx context.Context, owner kernel.OwnerID, req knowledge.CreateCardRequest) (*knowledge.KnowledgeCard, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, knowledge.ErrEmptyTitle()
	}

	now := s.now()
	card := knowledge.KnowledgeCard{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Category:  req.Category,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, card); err != nil {
		return nil, err
	}
	return &card, nil
}

// List retorna las tarjetas del owner, edición reciente primero
func (s *KnowledgeService) List(ctx context.Context, owner kernel.OwnerID) ([]knowledge.KnowledgeCard, error) {
	return s.repo.FindByOwner(ctx, owner)
}

// Search filtra por título, contenido o tags
func (s *KnowledgeService) Search(ctx context.Context, owner kernel.OwnerID, query string) ([]knowledge.KnowledgeCard, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.FindByOwner(ctx, owner)
	}
	return s.repo.Search(ctx, owner, query)
}

// Update edita una tarjeta existente
func (s *KnowledgeService) Update(ctx context.Context, owner kernel.OwnerID, id string, req knowledge.UpdateCardRequest) (*knowledge.KnowledgeCard, error) {
	card, err := s.repo.FindByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		card.Category = *req.Category
	}
	if req.Title != nil {
		card.Title = *req.Title
	}
	if req.Content != nil {
		card.Content = *req.Content
	}
	if req.Tags != nil {
		card.Tags = req.Tags
	}
	card.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, *card); err != nil {
		return nil, err
	}
	return card, nil
}

// Delete borra una tarjeta
func (s *KnowledgeService) Delete(ctx context.Context, owner kernel.OwnerID, id string) error {
	return s.repo.Delete(ctx, id, owner)
}
