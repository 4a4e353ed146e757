package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"anoa.com/communityforum/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

const sujetsIndex = "sujets"

// SujetIndex keeps subjects searchable. Implementations must tolerate being
// called for subjects that were never indexed.
type SujetIndex interface {
	IndexSujet(sujet *entity.Sujet) error
	DeleteSujet(id uint) error
	SearchSujets(query string, limit int) ([]uint, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log zerolog.Logger) SujetIndex {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"category_id"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(sujetsIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		s.log.Warn().Err(err).Msg("failed to update sujets filterable attributes")
	}

	sortableAttrs := []string{"created_at"}
	if _, err := s.client.Index(sujetsIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		s.log.Warn().Err(err).Msg("failed to update sujets sortable attributes")
	}
}

type meiliSujetDoc struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	CategoryID uint   `json:"category_id"`
	Category   string `json:"category"`
	CreatedAt  int64  `json:"created_at"`
}

func (s *meiliSearchService) cleanText(content string) string {
	cleanText := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) IndexSujet(sujet *entity.Sujet) error {
	doc := meiliSujetDoc{
		ID:         sujet.ID,
		Name:       s.cleanText(sujet.Name),
		CategoryID: sujet.CategoryID,
		CreatedAt:  sujet.CreatedAt.Unix(),
	}
	if sujet.Category != nil {
		doc.Category = sujet.Category.Name
	}

	task, err := s.client.Index(sujetsIndex).AddDocuments([]meiliSujetDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index sujet %d: %w", sujet.ID, err)
	}
	s.log.Debug().Uint("sujet_id", sujet.ID).Int64("task_uid", task.TaskUID).Msg("sujet indexed")
	return nil
}

func (s *meiliSearchService) DeleteSujet(id uint) error {
	_, err := s.client.Index(sujetsIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// SearchSujets returns matching subject ids, best match first.
func (s *meiliSearchService) SearchSujets(query string, limit int) ([]uint, error) {
	resp, err := s.client.Index(sujetsIndex).Search(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search sujets: %w", err)
	}
	return decodeIDs(resp.Hits)
}

// decodeIDs reads the id attribute of raw search hits.
func decodeIDs(hits any) ([]uint, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}
	ids := make([]uint, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
