package types

const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

const (
	DocumentSourceFile = "file"
	DocumentSourceURL  = "url"
)

// Document is the persisted record for an uploaded file or scraped URL.
// Its status field doubles as the durability record for the ingestion
// pipeline: pending -> processing -> completed|failed.
type Document struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	UserID      string `json:"user_id" bson:"user_id"`
	Filename    string `json:"filename" bson:"filename"`
	ContentType string `json:"content_type" bson:"content_type"`
	Status      string `json:"status" bson:"status"`
	Chunks      int    `json:"chunks" bson:"chunks"`
	Error       string `json:"error,omitempty" bson:"error,omitempty"`
	Source      string `json:"source" bson:"source"`
	StoragePath string `json:"-" bson:"storage_path,omitempty"`
	SourceURL   string `json:"source_url,omitempty" bson:"source_url,omitempty"`
	CreatedAt   int64  `json:"created_at" bson:"created_at"`
}

// VectorPoint is one chunk ready for insertion into the vector index.
// The payload fields mirror what retrieval needs to resolve a hit
// without touching the document store.
type VectorPoint struct {
	ID         string
	Vector     []float32
	DocID      string
	UserID     string
	Title      string
	Text       string
	ChunkIndex int
}

// VectorHit is a raw similarity search result in the index's native
// ranking order.
type VectorHit struct {
	Text       string
	DocID      string
	Title      string
	ChunkIndex int
	Score      float32
}
