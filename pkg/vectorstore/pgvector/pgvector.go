package pgvector

import (
	"context"
	"fmt"
	"time"

	"hof-chatbot-be/pkg/vectorstore"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmbeddingDim is the dimensionality of the embedding column below. The
// configured embedding provider must produce vectors of exactly this size.
const EmbeddingDim = 3072

// RecordEmbedding is the gorm model for one embedded compensation record.
// Namespace is the partition column; every query must constrain it.
type RecordEmbedding struct {
	Id             string            `gorm:"type:varchar(128);primaryKey"`
	Namespace      string            `gorm:"type:varchar(64);not null;index:idx_record_embeddings_ns"`
	EmployeeId     string            `gorm:"type:varchar(32);not null;index"`
	EmployeeName   string            `gorm:"type:varchar(100)"`
	DocType        string            `gorm:"type:varchar(40);not null;index"`
	Period         string            `gorm:"type:varchar(16)"`
	Company        string            `gorm:"type:varchar(100)"`
	SourceDoc      string            `gorm:"type:varchar(200)"`
	Document       string            `gorm:"type:text"`
	Extra          datatypes.JSONMap `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector   `gorm:"type:vector(3072)"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
}

func (RecordEmbedding) TableName() string {
	return "record_embeddings"
}

// Store implements vectorstore.Index on top of pgvector.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int, filter *vectorstore.Filter) ([]vectorstore.Match, error) {
	if topK <= 0 {
		topK = 10
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so the score is
	// 1 - (embedding_value <=> query_vector).
	type row struct {
		RecordEmbedding
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)

	q := s.db.WithContext(ctx).
		Table("record_embeddings").
		Select("record_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("namespace = ?", namespace)

	if filter != nil {
		if filter.EmployeeID != "" {
			q = q.Where("employee_id = ?", filter.EmployeeID)
		}
		if filter.DocType != "" {
			q = q.Where("doc_type = ?", filter.DocType)
		}
		if filter.Period != "" {
			q = q.Where("period = ?", filter.Period)
		}
		if filter.Company != "" {
			q = q.Where("company = ?", filter.Company)
		}
	}

	if err := q.Order("similarity DESC").Limit(topK).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("pgvector query on namespace %s: %w", namespace, err)
	}

	matches := make([]vectorstore.Match, len(rows))
	for i, r := range rows {
		matches[i] = vectorstore.Match{
			ID:        r.Id,
			Score:     r.Similarity,
			Namespace: namespace,
			Document:  r.Document,
			Source:    vectorstore.SourceDense,
			Metadata: vectorstore.Metadata{
				EmployeeID:   r.EmployeeId,
				EmployeeName: r.EmployeeName,
				DocType:      r.DocType,
				Period:       r.Period,
				Company:      r.Company,
				SourceDoc:    r.SourceDoc,
				Extra:        r.Extra,
			},
		}
	}
	return matches, nil
}
