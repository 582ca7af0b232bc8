package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const EventsIndexName = "events"

func eventsMapping() (string, error) {
	keywordSub := map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":          map[string]interface{}{"type": "text", "fields": keywordSub},
				"slug":           map[string]interface{}{"type": "keyword"},
				"description":    map[string]interface{}{"type": "text"},
				"location":       map[string]interface{}{"type": "text", "fields": keywordSub},
				"date":           map[string]interface{}{"type": "keyword"},
				"time":           map[string]interface{}{"type": "keyword"},
				"limit":          map[string]interface{}{"type": "integer"},
				"auto_approve":   map[string]interface{}{"type": "boolean"},
				"organizer_uid":  map[string]interface{}{"type": "keyword"},
				"organizer_name": map[string]interface{}{"type": "text", "fields": keywordSub},
				"created_at":     map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling events mapping to JSON: %w", err)
	}
	return string(b), nil
}

// CreateEventsIndexIfNotExists creates the events index with its mapping
// unless it already exists.
func CreateEventsIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{EventsIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if events index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Debug("Events index already exists", zap.String("index_name", EventsIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if events index exists: status %s", res.Status())
	}

	mappingJSON, err := eventsMapping()
	if err != nil {
		return err
	}
	createRes, err := esapi.IndicesCreateRequest{
		Index: EventsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating events index %s: %w", EventsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create events index",
			zap.String("status", createRes.Status()),
			zap.String("body", responseBodyToString(createRes)),
		)
		return fmt.Errorf("failed to create events index %s: status %s", EventsIndexName, createRes.Status())
	}

	log.Info("Events index created successfully", zap.String("index_name", EventsIndexName))
	return nil
}

// EventIndex indexes and searches event documents.
type EventIndex struct {
	client *ESClientWrapper
	logger *zap.Logger
}

// NewEventIndex returns nil when client is nil so callers can treat search as disabled.
func NewEventIndex(client *ESClientWrapper, logger *zap.Logger) *EventIndex {
	if client == nil {
		return nil
	}
	return &EventIndex{client: client, logger: logger.Named("EventIndex")}
}

// EnsureIndex creates the events index when missing.
func (i *EventIndex) EnsureIndex(ctx context.Context) error {
	return CreateEventsIndexIfNotExists(ctx, i.client, i.logger)
}

// Index writes doc under id, replacing any previous version.
func (i *EventIndex) Index(ctx context.Context, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshalling event %s for index: %w", id, err)
	}
	res, err := esapi.IndexRequest{
		Index:      EventsIndexName,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("error indexing event %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error indexing event %s: status %s: %s", id, res.Status(), responseBodyToString(res))
	}
	return nil
}

// Search runs a multi_match over the text fields and returns matching ids by relevance.
func (i *EventIndex) Search(ctx context.Context, query string, size int) ([]string, error) {
	q := map[string]interface{}{
		"size":    size,
		"_source": false,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^3", "description", "location", "organizer_name"},
				"fuzziness": "AUTO",
			},
		},
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("error marshalling search query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(EventsIndexName),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("error searching events: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("error searching events: status %s: %s", res.Status(), responseBodyToString(res))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := decodeJSONBody(res.Body, &parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func responseBodyToString(res *esapi.Response) string {
	if res == nil || res.Body == nil {
		return ""
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return fmt.Sprintf("failed to read response body: %v", err)
	}
	return buf.String()
}
