package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Assessment API",
        "description": "Examination assessment and grading engine",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Marks", "description": "Mark entry and retrieval"},
        {"name": "Reviews", "description": "Mark review workflow"},
        {"name": "Summaries", "description": "Exam summaries and class ranking"},
        {"name": "Terms", "description": "Weighted term results"}
    ],
    "paths": {
        "/marks": {
            "post": {
                "tags": ["Marks"],
                "summary": "Upsert a single mark",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertMarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Mark locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/marks/bulk": {
            "post": {
                "tags": ["Marks"],
                "summary": "Bulk upsert marks with partial success",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkMarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{examId}/students/{studentId}/marks": {
            "get": {
                "tags": ["Marks"],
                "summary": "List a student's marks for an exam",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{examId}/students/{studentId}/summary": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Get a student's exam summary",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{examId}/classes/{classId}/ranking": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Get the class ranking for an exam",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{examId}/classes/{classId}/summaries/recompute": {
            "post": {
                "tags": ["Summaries"],
                "summary": "Recompute all summaries for a class",
                "parameters": [
                    {"name": "examId", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reviews/submit": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Submit draft marks for review",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitMarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Incomplete coverage", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reviews/approve": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Approve submitted marks",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveMarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Unsubmitted marks present", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reviews/request-correction": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Send submitted marks back for correction",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestCorrectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/compute": {
            "post": {
                "tags": ["Terms"],
                "summary": "Compute weighted term results",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ComputeTermRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid weights", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "MarkRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "exam_id": {"type": "string"},
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "marks_obtained": {"type": "number"},
                "max_marks": {"type": "number"},
                "percentage": {"type": "number"},
                "grade": {"type": "string"},
                "passing_status": {"type": "string"},
                "review_status": {"type": "string"},
                "review_remark": {"type": "string"},
                "entered_by": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "ExamSummary": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "student_id": {"type": "string"},
                "total_marks": {"type": "number"},
                "total_max_marks": {"type": "number"},
                "overall_percentage": {"type": "number"},
                "overall_grade": {"type": "string"},
                "result_status": {"type": "string"},
                "subjects_passed": {"type": "integer"},
                "subjects_failed": {"type": "integer"},
                "rank_in_class": {"type": "integer"},
                "computed_at": {"type": "string"}
            }
        },
        "UpsertMarkRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "max_marks": {"type": "number"},
                "marks_obtained": {"type": "number"},
                "remarks": {"type": "string"}
            },
            "required": ["exam_id", "student_id", "subject_id", "max_marks", "marks_obtained"]
        },
        "BulkMarksRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"},
                "students": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BulkStudentMarks"}
                }
            },
            "required": ["exam_id", "class_id", "students"]
        },
        "BulkStudentMarks": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subjects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BulkSubjectMark"}
                }
            },
            "required": ["student_id", "subjects"]
        },
        "BulkSubjectMark": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "max_marks": {"type": "number"},
                "marks_obtained": {"type": "number"},
                "remarks": {"type": "string"}
            },
            "required": ["subject_id"]
        },
        "SubmitMarksRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"},
                "student_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["exam_id", "class_id"]
        },
        "ApproveMarksRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"}
            },
            "required": ["exam_id", "class_id"]
        },
        "RequestCorrectionRequest": {
            "type": "object",
            "properties": {
                "exam_id": {"type": "string"},
                "class_id": {"type": "string"},
                "remark": {"type": "string"}
            },
            "required": ["exam_id", "class_id"]
        },
        "ComputeTermRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "exam_ids": {"type": "array", "items": {"type": "string"}},
                "weights": {"type": "array", "items": {"type": "number"}}
            },
            "required": ["class_id", "exam_ids", "weights"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
