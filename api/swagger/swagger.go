package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Clinic Scheduler API",
        "description": "Scheduling engine for a pediatric therapy clinic: sessions, workload, coverage and change history.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Children",
            "description": "Patients and their weekly therapy goals"
        },
        {
            "name": "Therapists",
            "description": "Therapist roster, workload and availability"
        },
        {
            "name": "Schedules",
            "description": "Session booking, validation and change history"
        },
        {
            "name": "Analytics",
            "description": "Weekly workload and coverage dashboards"
        },
        {
            "name": "Reports",
            "description": "CSV and PDF exports"
        },
        {
            "name": "System",
            "description": "Process metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Degraded"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/children": {
            "get": {
                "tags": [
                    "Children"
                ],
                "summary": "List children",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Children"
                ],
                "summary": "Create child",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateChildRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/children/{id}": {
            "get": {
                "tags": [
                    "Children"
                ],
                "summary": "Get child",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            },
            "put": {
                "tags": [
                    "Children"
                ],
                "summary": "Update child",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateChildRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/children/{id}/coverage": {
            "get": {
                "tags": [
                    "Children"
                ],
                "summary": "Weekly therapy coverage of a child",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/therapists": {
            "get": {
                "tags": [
                    "Therapists"
                ],
                "summary": "List therapists",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "specialty",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Therapists"
                ],
                "summary": "Create therapist",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateTherapistRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/therapists/suggestions": {
            "post": {
                "tags": [
                    "Therapists"
                ],
                "summary": "Rank therapists able to take a session",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SuggestionRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/therapists/{id}": {
            "get": {
                "tags": [
                    "Therapists"
                ],
                "summary": "Get therapist",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            },
            "put": {
                "tags": [
                    "Therapists"
                ],
                "summary": "Update therapist",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateTherapistRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/therapists/{id}/workload": {
            "get": {
                "tags": [
                    "Therapists"
                ],
                "summary": "Weekly workload of a therapist",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/therapists/{id}/available-slots": {
            "get": {
                "tags": [
                    "Therapists"
                ],
                "summary": "Free start times for a therapist on a day",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "duration",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "child_id",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/schedules": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "List sessions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "therapist_id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "child_id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Book a session",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Rejected by scheduling rules",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateScheduleRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/validate": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Validate a candidate session",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CandidateRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/conflicts": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "List sessions overlapping a candidate",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CandidateRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/{id}": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Get session",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            },
            "patch": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Update session fields",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Rejected by scheduling rules",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Status transition not allowed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateScheduleRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/{id}/move": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Move a session to a new slot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Rejected by scheduling rules",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Status transition not allowed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MoveScheduleRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/{id}/move/preview": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Preview the effect of a move without committing it",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MoveScheduleRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/{id}/cancel": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Cancel a session",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Status transition not allowed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StatusChangeRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/{id}/complete": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Mark a session completed",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Status transition not allowed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "X-User-ID",
                        "in": "header",
                        "type": "string",
                        "description": "Staff member performing the request"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StatusChangeRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/schedules/{id}/history": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Change history of a session, newest first",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/analytics/workload": {
            "get": {
                "tags": [
                    "Analytics"
                ],
                "summary": "Workload of every therapist, heaviest first",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/analytics/workload/alerts": {
            "get": {
                "tags": [
                    "Analytics"
                ],
                "summary": "Therapists near or over their weekly limit",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/analytics/coverage": {
            "get": {
                "tags": [
                    "Analytics"
                ],
                "summary": "Therapy coverage of every child",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/history": {
            "get": {
                "tags": [
                    "Analytics"
                ],
                "summary": "Clinic-wide change ledger, newest first",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "schedule_id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "change_type",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "changed_by",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ]
            }
        },
        "/api/v1/reports/{kind}": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Download a weekly report",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "kind",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "store",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Report file",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/system/metrics": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Process metrics snapshot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "Guardian": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "relationship": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                }
            }
        },
        "WeeklyTherapy": {
            "type": "object",
            "properties": {
                "specialty": {
                    "type": "string"
                },
                "hours_required": {
                    "type": "number"
                }
            }
        },
        "CreateChildRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "birth_date": {
                    "type": "string"
                },
                "gender": {
                    "type": "string"
                },
                "diagnosis": {
                    "type": "string"
                },
                "guardians": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Guardian"
                    }
                },
                "weekly_therapies": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/WeeklyTherapy"
                    }
                }
            },
            "required": [
                "name"
            ]
        },
        "CreateTherapistRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "license_number": {
                    "type": "string"
                },
                "specialties": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "weekly_workload_hours": {
                    "type": "number"
                },
                "color": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "specialties",
                "weekly_workload_hours"
            ]
        },
        "CreateScheduleRequest": {
            "type": "object",
            "properties": {
                "child_id": {
                    "type": "string"
                },
                "therapist_id": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "duration": {
                    "type": "integer"
                },
                "activity": {
                    "type": "string"
                },
                "observations": {
                    "type": "string"
                }
            },
            "required": [
                "child_id",
                "therapist_id",
                "date",
                "time",
                "activity"
            ]
        },
        "UpdateScheduleRequest": {
            "type": "object",
            "properties": {
                "child_id": {
                    "type": "string"
                },
                "therapist_id": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "duration": {
                    "type": "integer"
                },
                "activity": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "observations": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "MoveScheduleRequest": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "therapist_id": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                }
            },
            "required": [
                "date",
                "time"
            ]
        },
        "StatusChangeRequest": {
            "type": "object",
            "properties": {
                "reason": {
                    "type": "string"
                }
            }
        },
        "CandidateRequest": {
            "type": "object",
            "properties": {
                "schedule_id": {
                    "type": "string"
                },
                "child_id": {
                    "type": "string"
                },
                "therapist_id": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "duration": {
                    "type": "integer"
                },
                "activity": {
                    "type": "string"
                }
            },
            "required": [
                "therapist_id",
                "date",
                "time"
            ]
        },
        "SuggestionRequest": {
            "type": "object",
            "properties": {
                "schedule_id": {
                    "type": "string"
                },
                "child_id": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "duration": {
                    "type": "integer"
                },
                "activity": {
                    "type": "string"
                }
            },
            "required": [
                "child_id",
                "date",
                "time",
                "activity"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "details": {
                    "type": "object"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
