package main

import (
	"net/http"

	"github.com/safetynet/alerts/internal/platform/openapi"
)

var (
	namesQuery = []openapi.Param{
		{Name: "firstName", Required: true},
		{Name: "lastName", Required: true},
	}
	addressQuery = []openapi.Param{{Name: "address", Required: true}}
	allowSimilar = []openapi.Param{{Name: "allowSimilarNames", Description: "Accept a name pair another person already uses"}}

	readResponses = map[string]string{"200": "Found", "400": "Invalid parameter", "404": "Not found"}
	saveResponses = map[string]string{
		"201": "Created",
		"204": "Updated",
		"400": "Invalid body or parameter",
		"404": "Referenced entity not found",
		"409": "Conflict with existing data",
	}
	deleteResponses = map[string]string{"204": "Deleted", "400": "Invalid parameter", "404": "Not found", "409": "Ambiguous names"}
	alertResponses  = map[string]string{"200": "Alert view", "400": "Invalid parameter"}
)

func stringSchema(format string) map[string]interface{} {
	s := map[string]interface{}{"type": "string"}
	if format != "" {
		s["format"] = format
	}
	return s
}

func objectSchema(props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": props}
}

// apiDocs describes every public route for /openapi.json.
func apiDocs() *openapi.Generator {
	g := openapi.NewGenerator("SafetyNet Alerts API", version)

	g.Schema("Person", objectSchema(map[string]interface{}{
		"id":        map[string]string{"type": "integer"},
		"firstName": stringSchema(""),
		"lastName":  stringSchema(""),
		"address":   stringSchema(""),
		"city":      stringSchema(""),
		"zip":       stringSchema(""),
		"phone":     stringSchema(""),
		"email":     stringSchema("email"),
	}))
	g.Schema("MedicalRecord", objectSchema(map[string]interface{}{
		"personId":    map[string]string{"type": "integer"},
		"firstName":   stringSchema(""),
		"lastName":    stringSchema(""),
		"birthdate":   stringSchema("date"),
		"medications": map[string]interface{}{"type": "array", "items": stringSchema("")},
		"allergies":   map[string]interface{}{"type": "array", "items": stringSchema("")},
	}))
	g.Schema("Firestation", objectSchema(map[string]interface{}{
		"address": stringSchema(""),
		"station": stringSchema(""),
	}))

	g.Add(
		openapi.Operation{Method: http.MethodGet, Path: "/person/:id", Summary: "Read a person", Tag: "person", Responses: readResponses},
		openapi.Operation{Method: http.MethodPost, Path: "/person", Summary: "Create a person", Tag: "person", Query: allowSimilar, Body: "Person", Responses: saveResponses},
		openapi.Operation{Method: http.MethodPut, Path: "/person/:id", Summary: "Create or update a person by id", Tag: "person", Query: allowSimilar, Body: "Person", Responses: saveResponses},
		openapi.Operation{Method: http.MethodPut, Path: "/person", Summary: "Create or update a person by names", Tag: "person", Query: namesQuery, Body: "Person", Responses: saveResponses},
		openapi.Operation{Method: http.MethodDelete, Path: "/person/:id", Summary: "Delete a person by id", Tag: "person", Responses: deleteResponses},
		openapi.Operation{Method: http.MethodDelete, Path: "/person", Summary: "Delete a person by names", Tag: "person", Query: namesQuery, Responses: deleteResponses},

		openapi.Operation{Method: http.MethodGet, Path: "/medicalRecord/:personId", Summary: "Read a medical record", Tag: "medicalRecord", Responses: readResponses},
		openapi.Operation{Method: http.MethodPost, Path: "/medicalRecord", Summary: "Create a medical record", Tag: "medicalRecord", Body: "MedicalRecord", Responses: saveResponses},
		openapi.Operation{Method: http.MethodPut, Path: "/medicalRecord/:personId", Summary: "Update a medical record by owner id", Tag: "medicalRecord", Body: "MedicalRecord", Responses: saveResponses},
		openapi.Operation{Method: http.MethodPut, Path: "/medicalRecord", Summary: "Update a medical record by owner names", Tag: "medicalRecord", Query: namesQuery, Body: "MedicalRecord", Responses: saveResponses},
		openapi.Operation{Method: http.MethodDelete, Path: "/medicalRecord/:personId", Summary: "Delete a medical record by owner id", Tag: "medicalRecord", Responses: deleteResponses},
		openapi.Operation{Method: http.MethodDelete, Path: "/medicalRecord", Summary: "Delete a medical record by owner names", Tag: "medicalRecord", Query: namesQuery, Responses: deleteResponses},

		openapi.Operation{Method: http.MethodGet, Path: "/firestation/get", Summary: "Read the station covering an address", Tag: "firestation", Query: addressQuery, Responses: readResponses},
		openapi.Operation{Method: http.MethodPost, Path: "/firestation", Summary: "Assign a station to an address", Tag: "firestation", Body: "Firestation", Responses: saveResponses},
		openapi.Operation{Method: http.MethodPut, Path: "/firestation", Summary: "Reassign the station of an address", Tag: "firestation", Query: addressQuery, Body: "Firestation", Responses: saveResponses},
		openapi.Operation{Method: http.MethodDelete, Path: "/firestation", Summary: "Remove station coverage from an address", Tag: "firestation", Query: addressQuery, Responses: deleteResponses},

		openapi.Operation{Method: http.MethodGet, Path: "/firestation", Summary: "Persons covered by a station", Tag: "alerts", Query: []openapi.Param{{Name: "stationNumber", Required: true}}, Responses: alertResponses},
		openapi.Operation{Method: http.MethodGet, Path: "/childAlert", Summary: "Children living at an address", Tag: "alerts", Query: addressQuery, Responses: alertResponses},
		openapi.Operation{Method: http.MethodGet, Path: "/phoneAlert", Summary: "Phone numbers covered by a station", Tag: "alerts", Query: []openapi.Param{{Name: "firestation", Required: true}}, Responses: alertResponses},
		openapi.Operation{Method: http.MethodGet, Path: "/fire", Summary: "Residents of an address and its station", Tag: "alerts", Query: addressQuery, Responses: alertResponses},
		openapi.Operation{Method: http.MethodGet, Path: "/flood/stations", Summary: "Households covered by several stations", Tag: "alerts", Query: []openapi.Param{{Name: "stations", Required: true, Description: "Comma separated or repeated station numbers"}}, Responses: alertResponses},
		openapi.Operation{Method: http.MethodGet, Path: "/personInfo", Summary: "Persons matching a name pair", Tag: "alerts", Query: namesQuery, Responses: alertResponses},
		openapi.Operation{Method: http.MethodGet, Path: "/communityEmail", Summary: "Emails of a city's residents", Tag: "alerts", Query: []openapi.Param{{Name: "city", Required: true}}, Responses: alertResponses},

		openapi.Operation{Method: http.MethodGet, Path: "/health", Summary: "Liveness", Tag: "ops", Responses: map[string]string{"200": "Up"}},
		openapi.Operation{Method: http.MethodGet, Path: "/health/db", Summary: "Database reachability and pool statistics", Tag: "ops", Responses: map[string]string{"200": "Healthy", "503": "Unreachable"}},
		openapi.Operation{Method: http.MethodGet, Path: "/actuator/info", Summary: "Repository sizes", Tag: "ops", Responses: map[string]string{"200": "Counts"}},
		openapi.Operation{Method: http.MethodGet, Path: "/metrics", Summary: "Prometheus metrics", Tag: "ops", Responses: map[string]string{"200": "Exposition"}},
	)
	return g
}
