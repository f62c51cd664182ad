package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// DefaultOpenAPIPath is where the server looks for the API document.
const DefaultOpenAPIPath = "api/openapi/openapi.yaml"

// OpenAPIHandler serves the API document as YAML and JSON.
type OpenAPIHandler struct {
	yamlDoc []byte
	jsonDoc []byte
}

// LoadOpenAPIHandler reads and parses the document at path once, so a broken
// document fails at startup rather than per request.
func LoadOpenAPIHandler(path string) (*OpenAPIHandler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}
	return NewOpenAPIHandler(data)
}

// NewOpenAPIHandler builds a handler from a YAML document.
func NewOpenAPIHandler(yamlDoc []byte) (*OpenAPIHandler, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(yamlDoc, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	if _, ok := doc["openapi"]; !ok {
		return nil, fmt.Errorf("OpenAPI document has no openapi version field")
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document as JSON: %w", err)
	}

	return &OpenAPIHandler{yamlDoc: yamlDoc, jsonDoc: jsonDoc}, nil
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods("GET")
}

// ServeYAML serves the OpenAPI spec in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.yamlDoc)
}

// ServeJSON serves the OpenAPI spec in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
