package handlers

import (
	"encoding/json"
	"net/http"
)

func jsonResponse(description string, schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

// OpenAPISpec returns the OpenAPI 3.0 document for the airport lookup API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Airport Data API",
			"description": "Read-only lookup of airports and runways from the bundled compact table",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/airports": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Search airports by code prefix",
					"description": "Case-insensitive prefix match on ICAO codes, ascending code order",
					"parameters": []map[string]interface{}{
						{
							"name":        "q",
							"in":          "query",
							"description": "Code prefix; an empty prefix returns no results",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Maximum results (default: 10, max: 100)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 10, "minimum": 1, "maximum": MaxSearchLimit},
						},
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Matching airports", ref("SearchResponse")),
						"400": jsonResponse("Invalid limit", ref("Error")),
					},
				},
			},
			"/api/airports/{icao}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get an airport by ICAO code",
					"parameters": []map[string]interface{}{
						{
							"name":     "icao",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Expanded airport with runways", ref("Airport")),
						"404": jsonResponse("Airport not in table", ref("Error")),
						"503": jsonResponse("Airport table not loaded", ref("Error")),
					},
				},
			},
			"/api/meta": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Table metadata",
					"responses": map[string]interface{}{
						"200": jsonResponse("Generation metadata", ref("Meta")),
					},
				},
			},
			"/api/stats": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Coverage statistics",
					"responses": map[string]interface{}{
						"200": jsonResponse("Airport counts by country, type and runway surface", map[string]string{"type": "object"}),
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": jsonResponse("Table loaded", map[string]string{"type": "object"}),
						"503": jsonResponse("Table missing or database unreachable", map[string]string{"type": "object"}),
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Prometheus metrics",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"RunwayEnd": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"ident":       map[string]string{"type": "string"},
						"headingTrue": map[string]string{"type": "integer"},
					},
				},
				"Runway": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":       map[string]string{"type": "string", "example": "06L/24R"},
						"lengthFt": map[string]string{"type": "integer"},
						"widthFt":  map[string]string{"type": "integer"},
						"surface":  map[string]string{"type": "string", "example": "asphalt"},
						"low":      ref("RunwayEnd"),
						"high":     ref("RunwayEnd"),
					},
				},
				"Airport": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"icao":         map[string]string{"type": "string", "example": "CYUL"},
						"name":         map[string]string{"type": "string"},
						"latitude":     map[string]string{"type": "number"},
						"longitude":    map[string]string{"type": "number"},
						"elevationFt":  map[string]string{"type": "integer"},
						"type":         map[string]string{"type": "string", "example": "large_airport"},
						"municipality": map[string]string{"type": "string"},
						"region":       map[string]string{"type": "string", "example": "CA-QC"},
						"runways":      map[string]interface{}{"type": "array", "items": ref("Runway")},
					},
				},
				"SearchResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":  map[string]interface{}{"type": "array", "items": ref("Airport")},
						"query": map[string]string{"type": "string"},
						"limit": map[string]string{"type": "integer"},
						"count": map[string]string{"type": "integer"},
					},
				},
				"Meta": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"available": map[string]string{"type": "boolean"},
						"meta": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"generated": map[string]string{"type": "string", "format": "date-time"},
								"source":    map[string]string{"type": "string"},
								"sourceUrl": map[string]string{"type": "string"},
								"count":     map[string]string{"type": "integer"},
								"coverage":  map[string]string{"type": "string"},
							},
						},
					},
				},
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
