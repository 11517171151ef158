package api

import (
	"github.com/JaimeStill/grader/internal/config"
	"github.com/JaimeStill/grader/pkg/openapi"
)

var (
	scoreMin = 0.0
	scoreMax = 5.0
)

func score(description string) *openapi.Schema {
	return &openapi.Schema{
		Type:        "integer",
		Description: description,
		Minimum:     &scoreMin,
		Maximum:     &scoreMax,
	}
}

func object(required []string, props map[string]*openapi.Schema) *openapi.Schema {
	return &openapi.Schema{Type: "object", Required: required, Properties: props}
}

func arrayOf(name string) *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: openapi.SchemaRef(name)}
}

func failures(codes ...int) map[int]*openapi.Response {
	names := map[int]string{
		400: "BadRequest",
		401: "Unauthorized",
		404: "NotFound",
		409: "Conflict",
		429: "TooManyRequests",
		408: "RequestTimeout",
		500: "InternalError",
	}
	out := make(map[int]*openapi.Response, len(codes)+1)
	for _, c := range codes {
		out[c] = openapi.ResponseRef(names[c])
	}
	return out
}

func with(responses map[int]*openapi.Response, status int, r *openapi.Response) map[int]*openapi.Response {
	responses[status] = r
	return responses
}

// NewSpec describes the API module's routes as an OpenAPI 3.1 document.
func NewSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(schemas())
	spec.Components.AddResponses(map[string]*openapi.Response{
		"BadRequest": openapi.ErrorResponse("Missing, mistyped, or oversized input"),
	})

	batch := openapi.QueryParam("batchId", "string", "Batch identifier (legacy alias: blkNumber)", false)
	limit := openapi.QueryParam("limit", "integer", "Maximum records returned", false)

	gradeResponses := with(failures(400, 408, 429, 500), 200, openapi.ResponseJSON("Grading result", "GradeResponse"))

	spec.Paths["/grade"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Grade a potato image",
			Tags:    []string{"Grading"},
			RequestBody: openapi.RequestBodyMultipart(map[string]*openapi.Schema{
				"image":     {Type: "string", Format: "binary", Description: "JPEG or PNG photograph, at most the configured size"},
				"batchId":   {Type: "string", Description: "Batch identifier; generated when absent"},
				"station":   {Type: "string"},
				"batchInfo": {Type: "string"},
			}, "image"),
			Responses: gradeResponses,
		},
	}

	spec.Paths["/reviews"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List recent grading records",
			Tags:       []string{"Reviews"},
			Parameters: []*openapi.Parameter{batch, limit},
			Responses:  with(failures(401, 500), 200, openapi.ResponseJSON("Records, newest first", "History")),
		},
		Post: &openapi.Operation{
			Summary:     "Save technician grades",
			Tags:        []string{"Reviews"},
			RequestBody: openapi.RequestBodyJSON("ReviewRequest", true),
			Responses:   with(failures(400, 401, 404, 409, 500), 200, openapi.ResponseJSON("Updated record", "ReviewResponse")),
		},
	}

	spec.Paths["/reviews/accept"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Accept the AI grades as the technician grades",
			Tags:        []string{"Reviews"},
			RequestBody: openapi.RequestBodyJSON("AcceptRequest", true),
			Responses:   with(failures(400, 401, 404, 409, 500), 200, openapi.ResponseJSON("Updated record", "ReviewResponse")),
		},
	}

	spec.Paths["/reviews/{batchId}/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Find a grading record",
			Tags:    []string{"Reviews"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("batchId", "Batch identifier"),
				openapi.PathParam("id", "Record identifier"),
			},
			Responses: with(failures(401, 404, 500), 200, openapi.ResponseJSON("Record", "Record")),
		},
	}

	search := &openapi.Operation{
		Summary: "Search grading records",
		Tags:    []string{"Records"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("pageSize", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Matches batch, station, technician or batch info", false),
			openapi.QueryParam("sort", "string", "Sort fields, - prefix for descending", false),
			batch,
			openapi.QueryParam("status", "string", "pending or completed", false),
			openapi.QueryParam("station", "string", "", false),
			openapi.QueryParam("technician", "string", "", false),
		},
		Responses: with(failures(400, 401, 500), 200, openapi.ResponseJSON("Page of records", "RecordPage")),
	}
	spec.Paths["/records/search"] = &openapi.PathItem{
		Get: search,
		Post: &openapi.Operation{
			Summary:     "Search grading records",
			Tags:        []string{"Records"},
			RequestBody: openapi.RequestBodyJSON("SearchRequest", true),
			Responses:   with(failures(400, 401, 500), 200, openapi.ResponseJSON("Page of records", "RecordPage")),
		},
	}

	spec.Paths["/analytics"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Summarize AI and technician grades",
			Tags:    []string{"Analytics"},
			Parameters: []*openapi.Parameter{
				batch,
				limit,
				openapi.QueryParam("bucket", "string", "Series bucket width, e.g. 1h (minimum 1m)", false),
			},
			Responses: with(failures(400, 401, 500), 200, openapi.ResponseJSON("Summary", "Summary")),
		},
	}

	spec.Paths["/images/{key}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Stream a stored image",
			Tags:       []string{"Images"},
			Parameters: []*openapi.Parameter{openapi.PathParam("key", "Storage key")},
			Responses: with(failures(400, 401, 404, 500), 200, &openapi.Response{
				Description: "Image bytes",
				Content: map[string]*openapi.MediaType{
					"image/*": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			}),
		},
	}

	return spec
}

func schemas() map[string]*openapi.Schema {
	str := func(d string) *openapi.Schema { return &openapi.Schema{Type: "string", Description: d} }
	stamp := &openapi.Schema{Type: "string", Format: "date-time"}

	return map[string]*openapi.Schema{
		"Grades": object([]string{"smoothness", "shininess", "combined"}, map[string]*openapi.Schema{
			"smoothness": score("Surface smoothness"),
			"shininess":  score("Surface shine"),
			"combined":   {Type: "integer", Description: "smoothness + shininess"},
		}),
		"GradeResult": object([]string{"grade", "batchId", "imageUrl", "grades", "persisted"}, map[string]*openapi.Schema{
			"grade":      str("Final line of the model response"),
			"reasoning":  str("Full model response"),
			"documentId": str("Record identifier when persisted"),
			"batchId":    str(""),
			"imageUrl":   str(""),
			"grades":     openapi.SchemaRef("Grades"),
			"persisted":  {Type: "boolean"},
			"warning":    str("Present when the record could not be saved"),
		}),
		"GradeResponse": object([]string{"result"}, map[string]*openapi.Schema{
			"result": openapi.SchemaRef("GradeResult"),
		}),
		"Record": object(nil, map[string]*openapi.Schema{
			"id":           str(""),
			"batchId":      str(""),
			"documentType": {Type: "string", Enum: []any{"grading_result"}},
			"imageMetadata": object(nil, map[string]*openapi.Schema{
				"originalImageUrl": str(""),
				"imageSize":        str("Human-readable size"),
				"captureTimestamp": stamp,
			}),
			"aiGrading": object(nil, map[string]*openapi.Schema{
				"smoothness":       score(""),
				"shininess":        score(""),
				"combined":         {Type: "integer"},
				"confidence":       {Type: "number"},
				"modelVersion":     str(""),
				"processingTimeMs": {Type: "integer"},
			}),
			"review": object(nil, map[string]*openapi.Schema{
				"status":               {Type: "string", Enum: []any{"pending", "completed"}},
				"technician":           str(""),
				"station":              str(""),
				"batchInfo":            str(""),
				"technicianSmoothness": score(""),
				"technicianShininess":  score(""),
				"technicianCombined":   {Type: "integer"},
				"reviewedBy":           str(""),
			}),
			"timestamps": object(nil, map[string]*openapi.Schema{
				"createdAt": stamp,
				"updatedAt": stamp,
			}),
			"version": {Type: "integer", Description: "Optimistic concurrency token"},
		}),
		"History": object([]string{"records"}, map[string]*openapi.Schema{
			"records": arrayOf("Record"),
		}),
		"RecordPage": object(nil, map[string]*openapi.Schema{
			"data":       arrayOf("Record"),
			"total":      {Type: "integer"},
			"page":       {Type: "integer"},
			"pageSize":   {Type: "integer"},
			"totalPages": {Type: "integer"},
		}),
		"ReviewRequest": object([]string{"documentId", "batchId", "smoothness", "shininess"}, map[string]*openapi.Schema{
			"documentId": str(""),
			"batchId":    str("Legacy alias: blkNumber"),
			"smoothness": score(""),
			"shininess":  score(""),
			"version":    {Type: "integer", Description: "Reject the update when the stored version differs"},
		}),
		"AcceptRequest": object([]string{"documentId", "batchId"}, map[string]*openapi.Schema{
			"documentId": str(""),
			"batchId":    str("Legacy alias: blkNumber"),
			"version":    {Type: "integer"},
		}),
		"ReviewResponse": object([]string{"success", "message", "record"}, map[string]*openapi.Schema{
			"success": {Type: "boolean"},
			"message": str(""),
			"record":  openapi.SchemaRef("Record"),
		}),
		"SearchRequest": object(nil, map[string]*openapi.Schema{
			"page":       {Type: "integer"},
			"pageSize":   {Type: "integer"},
			"search":     str(""),
			"sort":       str(""),
			"batchId":    str(""),
			"status":     str(""),
			"station":    str(""),
			"technician": str(""),
		}),
		"Summary": object(nil, map[string]*openapi.Schema{
			"series": {Type: "array", Items: object(nil, map[string]*openapi.Schema{
				"start":              stamp,
				"count":              {Type: "integer"},
				"reviewed":           {Type: "integer"},
				"aiCombined":         {Type: "number"},
				"technicianCombined": {Type: "number"},
			})},
			"confidence": {Type: "array", Items: object(nil, map[string]*openapi.Schema{
				"lower": {Type: "number"},
				"upper": {Type: "number"},
				"count": {Type: "integer"},
			})},
			"matchRate": {Type: "number"},
			"matches":   {Type: "integer"},
			"reviewed":  {Type: "integer"},
			"pending":   {Type: "integer"},
			"total":     {Type: "integer"},
		}),
	}
}
