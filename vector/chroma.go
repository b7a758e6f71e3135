// Package vector wraps the Chroma vector database REST API as the
// pipeline's vector index. Embeddings are always supplied by the
// caller; Chroma only stores and searches them.
package vector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// Index is the vector index contract the curation pipeline depends on.
type Index interface {
	Upsert(id string, vector []float32, metadata map[string]interface{}) error
	Query(vector []float32, topK int) ([]Match, error)
	Delete(id string) error
	Count() (int, error)
	Close() error
}

// Match is one nearest-neighbor result; Score is cosine similarity.
type Match struct {
	ID       string                 `json:"id"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Chroma talks to the Chroma v2 REST API.
type Chroma struct {
	baseURL        string
	tenant         string
	database       string
	collectionName string
	collectionID   string
	httpClient     *http.Client
}

// ChromaConfig holds configuration for the Chroma connection.
type ChromaConfig struct {
	Host           string
	Port           int
	CollectionName string
}

// NewChroma connects to Chroma and gets or creates the collection.
func NewChroma(config ChromaConfig) (*Chroma, error) {
	baseURL := fmt.Sprintf("http://%s:%d/api/v2", config.Host, config.Port)

	c := &Chroma{
		baseURL:        baseURL,
		tenant:         "default_tenant",
		database:       "default_database",
		collectionName: config.CollectionName,
		httpClient:     &http.Client{},
	}

	collectionID, err := c.getOrCreateCollection(config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection: %w", err)
	}
	c.collectionID = collectionID
	return c, nil
}

func (c *Chroma) getOrCreateCollection(name string) (string, error) {
	url := fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", c.baseURL, c.tenant, c.database, name)
	resp, err := c.httpClient.Get(url)
	if err == nil && resp.StatusCode == http.StatusOK {
		defer resp.Body.Close()
		var result map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", err
		}
		log.Printf("Using existing collection: %s", name)
		id, ok := result["id"].(string)
		if !ok {
			return "", fmt.Errorf("collection response missing id")
		}
		return id, nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	log.Printf("Creating new collection: %s", name)
	createURL := fmt.Sprintf("%s/tenants/%s/databases/%s/collections", c.baseURL, c.tenant, c.database)
	payload := map[string]interface{}{
		"name": name,
		"metadata": map[string]interface{}{
			"description": "curated item embeddings",
		},
		"get_or_create": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err = c.httpClient.Post(createURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to create collection: %s", string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("create collection response missing id")
	}
	return id, nil
}

func (c *Chroma) collectionURL() string {
	return fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", c.baseURL, c.tenant, c.database, c.collectionID)
}

// Upsert writes the vector and metadata for an id, replacing any
// previous entry for the same id.
func (c *Chroma) Upsert(id string, vector []float32, metadata map[string]interface{}) error {
	url := fmt.Sprintf("%s/upsert", c.collectionURL())
	payload := map[string]interface{}{
		"ids":        []string{id},
		"embeddings": [][]float32{vector},
		"metadatas":  []map[string]interface{}{metadata},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to upsert document: %s", string(body))
	}
	return nil
}

// queryResults mirrors the nested arrays Chroma returns for queries.
type queryResults struct {
	IDs       [][]string                 `json:"ids"`
	Distances [][]float32                `json:"distances"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
}

// Query returns up to topK nearest neighbors of vector.
func (c *Chroma) Query(vector []float32, topK int) ([]Match, error) {
	url := fmt.Sprintf("%s/query", c.collectionURL())
	payload := map[string]interface{}{
		"query_embeddings": [][]float32{vector},
		"n_results":        topK,
		"include":          []string{"metadatas", "distances"},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to query collection: %s", string(body))
	}

	var result queryResults
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if len(result.IDs) == 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(result.IDs[0]))
	for i, id := range result.IDs[0] {
		m := Match{ID: id}
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			// Chroma reports cosine distance; similarity = 1 - distance.
			m.Score = 1 - result.Distances[0][i]
		}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			m.Metadata = result.Metadatas[0][i]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Delete removes an id from the collection.
func (c *Chroma) Delete(id string) error {
	url := fmt.Sprintf("%s/delete", c.collectionURL())
	payload := map[string]interface{}{
		"ids": []string{id},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to delete document: %s", string(body))
	}
	return nil
}

// Count returns the number of stored vectors.
func (c *Chroma) Count() (int, error) {
	url := fmt.Sprintf("%s/count", c.collectionURL())
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("failed to count documents: %s", string(body))
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op for the REST client; it satisfies the Index contract.
func (c *Chroma) Close() error {
	return nil
}
