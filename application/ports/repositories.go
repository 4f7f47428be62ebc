package ports

import (
	"context"
	"time"

	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
)

// CardRepository defines the interface for concept card persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type CardRepository interface {
	// Save persists a card (create or full update). The card must
	// already carry a persisted identity.
	Save(ctx context.Context, card *entities.ConceptCard) error

	// GetByID retrieves a card by its ID
	GetByID(ctx context.Context, id string) (*entities.ConceptCard, error)

	// GetByUserID retrieves all cards owned by a user
	GetByUserID(ctx context.Context, userID string) ([]*entities.ConceptCard, error)
}

// NewsItem is a document in the news collection, resolved by ID
type NewsItem struct {
	ID          string
	Title       string
	Body        string
	PublishedAt time.Time
}

// Reflection is a document in the reflections collection. Reflections
// may live under different parent paths.
type Reflection struct {
	ID          string
	Content     string
	BibleRef    string
	ParentTitle string
	ParentPath  string
}

// SourceReader resolves linked source documents. A missing document
// returns a not-found error; callers rendering a sequence drop it
// silently rather than failing the read.
type SourceReader interface {
	GetNewsItem(ctx context.Context, id string) (*NewsItem, error)
	GetReflection(ctx context.Context, id, parentPath string) (*Reflection, error)

	// ListReflections returns the full reflection pool for a user,
	// fed to the scripture recommendation stage
	ListReflections(ctx context.Context, userID string) ([]Reflection, error)
}

// ScriptureRecommendation is one ranked result from the generator
type ScriptureRecommendation struct {
	ReflectionID string
	Reason       string
	Similarity   float64
}

// TextGenerator is the text-generation collaborator behind the three
// pipeline stages. Every entry point is gated by IsEnabled.
type TextGenerator interface {
	IsEnabled() bool

	GenerateReactionSnippets(ctx context.Context, title, body, conceptName string) ([]string, error)

	GenerateConclusionCandidates(ctx context.Context, pinnedReactions []string, conceptName, question string) ([]string, error)

	RecommendScriptures(ctx context.Context, conclusion string, pool []Reflection) ([]ScriptureRecommendation, error)
}

// Cache defines a small read-through cache used for the reflection pool
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
