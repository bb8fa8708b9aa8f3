// Package docs registers the OpenAPI document served at /docs/doc.json.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "Scoracle"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/matches": {
            "get": {
                "description": "Returns gold match summaries ordered by match date, newest first.",
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "List matches",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Page size (max 200)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Rows to skip", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/matches/{matchID}": {
            "get": {
                "description": "Returns the result, innings totals and match-level aggregates of one match.",
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Get match summary",
                "parameters": [{"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MatchSummary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/matches/{matchID}/innings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Get innings summaries",
                "parameters": [{"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/matches/{matchID}/batting": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Get batting stats",
                "parameters": [{"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/matches/{matchID}/bowling": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Get bowling stats",
                "parameters": [{"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/leaders/batting": {
            "get": {
                "description": "Players ordered by total runs. Served from mv_batting_leaders.",
                "produces": ["application/json"],
                "tags": ["leaders"],
                "summary": "Batting leaders",
                "parameters": [{"type": "integer", "default": 50, "description": "Number of players (max 200)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}
            }
        },
        "/leaders/bowling": {
            "get": {
                "description": "Players ordered by wickets, then economy. Served from mv_bowling_leaders.",
                "produces": ["application/json"],
                "tags": ["leaders"],
                "summary": "Bowling leaders",
                "parameters": [{"type": "integer", "default": 50, "description": "Number of players (max 200)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}
            }
        }
    },
    "definitions": {
        "model.MatchSummary": {
            "type": "object",
            "properties": {
                "match_id": {"type": "integer"},
                "venue": {"type": "string"},
                "series": {"type": "string"},
                "season": {"type": "string"},
                "match_date": {"type": "string"},
                "first_innings_team": {"type": "string"},
                "first_innings_runs": {"type": "integer"},
                "first_innings_wickets": {"type": "integer"},
                "first_innings_overs": {"type": "number"},
                "second_innings_team": {"type": "string"},
                "second_innings_runs": {"type": "integer"},
                "second_innings_wickets": {"type": "integer"},
                "second_innings_overs": {"type": "number"},
                "winner": {"type": "string"},
                "margin": {"type": "string"},
                "result_type": {"type": "string"},
                "total_runs": {"type": "integer"},
                "total_wickets": {"type": "integer"},
                "total_boundaries": {"type": "integer"},
                "total_sixes": {"type": "integer"},
                "total_extras": {"type": "integer"},
                "player_of_the_match": {"type": "string"}
            }
        },
        "respond.Envelope": {
            "type": "object",
            "properties": {
                "data": {},
                "meta": {"$ref": "#/definitions/respond.Meta"}
            }
        },
        "respond.Meta": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Scoracle Cricket API",
	Description:      "Read API over the gold cricket tables: match results, innings summaries, player batting and bowling lines, and career leader boards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
