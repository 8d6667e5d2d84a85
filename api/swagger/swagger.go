package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Dashboard API",
        "description": "Courses, assignments, grades and course content for students and teachers",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http"],
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Token issue and refresh"},
        {"name": "Student", "description": "Student collections and submissions"},
        {"name": "Teacher", "description": "Teacher courses, uploads and grade exports"},
        {"name": "Chatbot", "description": "Course content assistant"},
        {"name": "Records", "description": "Course, assignment and grade writes"}
    ],
    "paths": {
        "/health": {"get": {"summary": "Liveness check", "responses": {"200": {"description": "OK"}}}},
        "/ready": {"get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is down"}}}},
        "/metrics": {"get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}},
        "/api/token/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Obtain an access/refresh pair",
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "parameters": [
                    {"name": "username", "in": "formData", "type": "string", "required": true},
                    {"name": "password", "in": "formData", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/token/refresh/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [{"name": "refresh", "in": "formData", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "401": {"description": "Expired or revoked", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/token/logout/": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke a refresh token",
                "security": [{"Bearer": []}],
                "responses": {"204": {"description": "Revoked"}}
            }
        },
        "/api/user/me/": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserProfile"}},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/my-courses/": {
            "get": {
                "tags": ["Student"],
                "summary": "Enrollments of the caller",
                "security": [{"Bearer": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Enrollment"}}}}
            }
        },
        "/api/my-assignments/": {
            "get": {
                "tags": ["Student"],
                "summary": "Assignments of enrolled courses",
                "security": [{"Bearer": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}}}}
            }
        },
        "/api/my-grades/": {
            "get": {
                "tags": ["Student"],
                "summary": "Grades of the caller",
                "security": [{"Bearer": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Grade"}}}}
            }
        },
        "/api/my-submissions/": {
            "post": {
                "tags": ["Student"],
                "summary": "Submit an assignment",
                "security": [{"Bearer": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"assignment": {"type": "integer"}}}}],
                "responses": {
                    "201": {"description": "Submitted", "schema": {"$ref": "#/definitions/Grade"}},
                    "403": {"description": "Not enrolled", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Already graded", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/chatbot/query/": {
            "post": {
                "tags": ["Chatbot"],
                "summary": "Ask about course content",
                "security": [{"Bearer": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"query": {"type": "string"}}}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"response": {"type": "string"}}}},
                    "400": {"description": "Empty query", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/chatbot/history/": {
            "get": {
                "tags": ["Chatbot"],
                "summary": "Recent chatbot exchanges",
                "security": [{"Bearer": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/teacher/my-courses/": {
            "get": {
                "tags": ["Teacher"],
                "summary": "Courses taught by the caller",
                "security": [{"Bearer": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Course"}}}}
            }
        },
        "/api/teacher/upload-content/": {
            "post": {
                "tags": ["Teacher"],
                "summary": "Upload course material",
                "security": [{"Bearer": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "course_id", "in": "formData", "type": "integer", "required": true}
                ],
                "responses": {
                    "201": {"description": "Uploaded", "schema": {"$ref": "#/definitions/UploadResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/UploadError"}},
                    "403": {"description": "Not the course teacher", "schema": {"$ref": "#/definitions/UploadError"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/UploadError"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/UploadError"}}
                }
            }
        },
        "/api/teacher/courses/{id}/contents/": {
            "get": {
                "tags": ["Teacher"],
                "summary": "Uploaded files of a course",
                "security": [{"Bearer": []}],
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Content"}}}}
            }
        },
        "/api/teacher/courses/{id}/grades/export": {
            "get": {
                "tags": ["Teacher"],
                "summary": "Export a course grade sheet",
                "security": [{"Bearer": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File attachment"}}
            }
        },
        "/api/contents/{id}/download": {
            "get": {
                "tags": ["Teacher", "Student"],
                "summary": "Download uploaded material through a signed link",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "File stream"}, "403": {"description": "Bad or expired link"}}
            }
        },
        "/api/courses/": {
            "post": {"tags": ["Records"], "summary": "Create a course (staff)", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Course"}}}}
        },
        "/api/courses/{id}/": {
            "patch": {"tags": ["Records"], "summary": "Update a course (staff)", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Course"}}}}
        },
        "/api/assignments/": {
            "post": {"tags": ["Records"], "summary": "Create an assignment", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Assignment"}}}}
        },
        "/api/assignments/{id}/": {
            "patch": {"tags": ["Records"], "summary": "Update an assignment", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Assignment"}}}}
        },
        "/api/grades/": {
            "post": {"tags": ["Records"], "summary": "Record a grade", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Grade"}}}}
        },
        "/api/grades/{id}/": {
            "patch": {"tags": ["Records"], "summary": "Update a grade", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Grade"}}}}
        }
    },
    "definitions": {
        "TokenPair": {"type": "object", "properties": {"access": {"type": "string"}, "refresh": {"type": "string"}}},
        "UserProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "groups": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "code": {"type": "string"},
                "teacher_username": {"type": "string"}
            }
        },
        "Enrollment": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "course": {"$ref": "#/definitions/Course"},
                "enrollment_date": {"type": "string", "format": "date"}
            }
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "course_code": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "total_points": {"type": "string"}
            }
        },
        "Grade": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "assignment_title": {"type": "string"},
                "student_username": {"type": "string"},
                "course_code": {"type": "string"},
                "score": {"type": "string"},
                "submission_status": {"type": "string", "enum": ["pending", "submitted", "graded", "late"]},
                "submitted_at": {"type": "string", "format": "date-time"},
                "feedback": {"type": "string"}
            }
        },
        "Content": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "course_id": {"type": "integer"},
                "file_name": {"type": "string"},
                "mime_type": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "status": {"type": "string"},
                "uploaded_at": {"type": "string", "format": "date-time"},
                "download_url": {"type": "string"},
                "url_expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "UploadResponse": {"type": "object", "properties": {"message": {"type": "string"}, "content": {"$ref": "#/definitions/Content"}}},
        "UploadError": {"type": "object", "properties": {"error": {"type": "string"}}},
        "Error": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "detail": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
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
