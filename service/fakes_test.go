package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/nishcheyk/infinity-workspace/types"
)

// In-memory stand-ins for the storage, index, and provider boundaries.

type fakeEmbedder struct {
	mu      sync.Mutex
	dim     int
	batches [][]string
	err     error
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.batches = append(f.batches, texts)
	f.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector := make([]float32, f.dimension())
		vector[0] = float32(len(text))
		vectors[i] = vector
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dimension() }

func (f *fakeEmbedder) dimension() int {
	if f.dim <= 0 {
		return 4
	}
	return f.dim
}

type fakeVectorIndex struct {
	mu     sync.Mutex
	points []types.VectorPoint
	hits   []types.VectorHit

	searchVector []float32
	searchUser   string
	searchLimit  int
	deletedDocs  []string

	ensureErr error
	upsertErr error
	searchErr error
	deleteErr error
}

func (f *fakeVectorIndex) EnsureCollection(ctx context.Context) error {
	return f.ensureErr
}

func (f *fakeVectorIndex) UpsertPoints(ctx context.Context, points []types.VectorPoint) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, points...)
	return nil
}

func (f *fakeVectorIndex) Search(ctx context.Context, vector []float32, userID string, limit int) ([]types.VectorHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchVector = vector
	f.searchUser = userID
	f.searchLimit = limit
	return f.hits, nil
}

func (f *fakeVectorIndex) DeleteByDocument(ctx context.Context, docID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedDocs = append(f.deletedDocs, docID)
	kept := f.points[:0]
	for _, point := range f.points {
		if point.DocID != docID {
			kept = append(kept, point)
		}
	}
	f.points = kept
	return nil
}

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*types.Document
	seq  int

	deleteErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*types.Document)}
}

func (f *fakeDocumentRepo) CreateDocument(ctx context.Context, doc *types.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.ID == "" {
		f.seq++
		doc.ID = fmt.Sprintf("doc-%d", f.seq)
	}
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocumentRepo) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentRepo) GetUserDocument(ctx context.Context, id, userID string) (*types.Document, error) {
	doc, err := f.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("document %s not found", id)
	}
	return doc, nil
}

func (f *fakeDocumentRepo) ListDocuments(ctx context.Context, userID string) ([]*types.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []*types.Document
	for _, doc := range f.docs {
		if doc.UserID == userID {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	return docs, nil
}

func (f *fakeDocumentRepo) UpdateDocument(ctx context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}
	for key, value := range fields {
		switch key {
		case "status":
			doc.Status = value.(string)
		case "error":
			doc.Error = value.(string)
		case "chunks":
			doc.Chunks = value.(int)
		case "storage_path":
			doc.StoragePath = value.(string)
		}
	}
	return nil
}

func (f *fakeDocumentRepo) DeleteDocument(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentRepo) ListByStatus(ctx context.Context, statuses []string) ([]*types.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []*types.Document
	for _, doc := range f.docs {
		for _, status := range statuses {
			if doc.Status == status {
				copied := *doc
				docs = append(docs, &copied)
				break
			}
		}
	}
	return docs, nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	sessions map[string]*types.ChatSession
	messages []types.ChatMessage
	titles   map[string]string

	historyErr error
	createErr  error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		sessions: make(map[string]*types.ChatSession),
		titles:   make(map[string]string),
	}
}

func (f *fakeChatRepo) CreateSession(ctx context.Context, session *types.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.ID == "" {
		session.ID = fmt.Sprintf("session-%d", len(f.sessions)+1)
	}
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeChatRepo) GetSession(ctx context.Context, id string) (*types.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	copied := *session
	return &copied, nil
}

func (f *fakeChatRepo) GetUserSession(ctx context.Context, id, userID string) (*types.ChatSession, error) {
	session, err := f.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return session, nil
}

func (f *fakeChatRepo) ListSessions(ctx context.Context, userID string) ([]*types.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sessions []*types.ChatSession
	for _, session := range f.sessions {
		if session.UserID == userID {
			copied := *session
			sessions = append(sessions, &copied)
		}
	}
	return sessions, nil
}

func (f *fakeChatRepo) UpdateSessionTitle(ctx context.Context, id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles[id] = title
	if session, ok := f.sessions[id]; ok {
		session.Title = title
	}
	return nil
}

func (f *fakeChatRepo) TouchSession(ctx context.Context, id string) error {
	return nil
}

func (f *fakeChatRepo) DeleteSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, message *types.ChatMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	message.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, sessionID string, limit int) ([]types.ChatMessage, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var messages []types.ChatMessage
	for _, message := range f.messages {
		if message.SessionID == sessionID {
			messages = append(messages, message)
		}
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (f *fakeChatRepo) DeleteMessages(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	for _, message := range f.messages {
		if message.SessionID != sessionID {
			kept = append(kept, message)
		}
	}
	f.messages = kept
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events map[string][]interface{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(map[string][]interface{})}
}

func (f *fakeNotifier) Broadcast(userID string, event interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[userID] = append(f.events[userID], event)
}

func (f *fakeNotifier) eventsFor(userID string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}(nil), f.events[userID]...)
}

type fakeFileExtractor struct {
	elements []string
	err      error
}

func (f *fakeFileExtractor) ExtractFile(ctx context.Context, path, contentType string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.elements, nil
}

type fakeScraper struct {
	text string
	err  error
}

func (f *fakeScraper) ScrapePage(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeAI struct {
	mu      sync.Mutex
	prompts []string

	chatReply string
	chatErr   error

	tokens    []string
	streamErr error
}

func (f *fakeAI) Chat(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chatReply, nil
}

func (f *fakeAI) ChatStream(ctx context.Context, prompt string, handler types.StreamHandler) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	for _, token := range f.tokens {
		handler(token)
	}
	return f.streamErr
}

type fakeRetriever struct {
	mu     sync.Mutex
	chunks []types.RetrievedChunk
	err    error

	query  string
	userID string
	limit  int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query, userID string, limit int) ([]types.RetrievedChunk, error) {
	f.mu.Lock()
	f.query = query
	f.userID = userID
	f.limit = limit
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}
