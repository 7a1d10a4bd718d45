// Package docs registers the OpenAPI description of the forms API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BasicAuth": {"type": "basic"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/users": {
            "post": {
                "summary": "Sign up",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/User"}},
                    "400": {"description": "Missing field", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "get": {
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/UserSummary"}}},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "patch": {
                "summary": "Update the signed-in user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UserPatch"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}},
                    "403": {"description": "Username is immutable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}}
            }
        },
        "/users/{id}": {
            "get": {
                "summary": "Get a user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserSummary"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/users/signin": {
            "post": {
                "summary": "Sign in and get the bearer token",
                "security": [{"BasicAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SignInResponse"}},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/forms": {
            "post": {
                "summary": "Create a form",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFormRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Form"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "get": {
                "summary": "List forms",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Form"}}}}
            }
        },
        "/forms/{id}": {
            "get": {
                "summary": "Get a form",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Form"}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/forms/{id}/results": {
            "post": {
                "summary": "Submit answers",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitResultRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Result"}},
                    "400": {"description": "Invalid answers", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Form not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "get": {
                "summary": "Expanded results of a form",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ExpandedResult"}}},
                    "400": {"description": "Malformed id", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Form not found", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Inconsistent stored data", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/forms/{id}/results/live": {
            "get": {
                "summary": "WebSocket stream of newly submitted expanded results",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "Value": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["integer", "decimal", "text", "singleChoice", "multipleChoice"]},
                "value": {}
            }
        },
        "Question": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "type": {"type": "string", "enum": ["integer", "decimal", "text", "singleChoice", "multipleChoice"]},
                "options": {"type": "array", "items": {"type": "string"}},
                "answer": {"$ref": "#/definitions/Value"}
            }
        },
        "Form": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/Question"}},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateFormRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "questions": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "type": {"type": "string"},
                            "title": {"type": "string"},
                            "options": {"type": "array", "items": {"type": "string"}}
                        }
                    }
                }
            }
        },
        "SubmitResultRequest": {
            "type": "object",
            "properties": {
                "answers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "question": {"type": "string"},
                            "type": {"type": "string"},
                            "value": {}
                        }
                    }
                }
            }
        },
        "Result": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "form": {"type": "string"},
                "user": {"type": "string"},
                "answers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"question": {"type": "string"}, "value": {"$ref": "#/definitions/Value"}}
                    }
                },
                "submittedAt": {"type": "string", "format": "date-time"}
            }
        },
        "ExpandedResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "form": {"type": "string"},
                "user": {"$ref": "#/definitions/User"},
                "answers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"question": {"$ref": "#/definitions/Question"}, "value": {"$ref": "#/definitions/Value"}}
                    }
                },
                "submittedAt": {"type": "string", "format": "date-time"}
            }
        },
        "SignUpRequest": {
            "type": "object",
            "required": ["username", "password", "email"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "UserPatch": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "UserSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "SignInResponse": {
            "allOf": [
                {"$ref": "#/definitions/User"},
                {"type": "object", "properties": {"token": {"type": "string"}}}
            ]
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Forms API",
	Description:      "Typed forms, result submission and expanded results.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
