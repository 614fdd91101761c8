// Package apidoc builds the OpenAPI description of the storefront endpoints.
package apidoc

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

func stringSchema() *openapi3.Schema {
	return &openapi3.Schema{Type: &openapi3.Types{"string"}}
}

func objectSchema(props map[string]*openapi3.Schema, required ...string) *openapi3.Schema {
	properties := make(openapi3.Schemas, len(props))
	for name, schema := range props {
		properties[name] = &openapi3.SchemaRef{Value: schema}
	}
	return &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: properties,
		Required:   required,
	}
}

func errorSchema() *openapi3.Schema {
	return objectSchema(map[string]*openapi3.Schema{
		"error":  stringSchema(),
		"status": {Type: &openapi3.Types{"integer"}},
	}, "error")
}

func userSchema() *openapi3.Schema {
	return objectSchema(map[string]*openapi3.Schema{
		"id":         {Type: &openapi3.Types{"integer"}},
		"email":      stringSchema(),
		"first_name": stringSchema(),
		"last_name":  stringSchema(),
		"avatar":     stringSchema(),
	}, "id")
}

func subscriptionSchema() *openapi3.Schema {
	return objectSchema(map[string]*openapi3.Schema{
		"email":     stringSchema(),
		"firstName": stringSchema(),
		"lastName":  stringSchema(),
		"phone":     stringSchema(),
		"consent":   stringSchema(),
	}, "email")
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema)}
}

func responses(ok *openapi3.ResponseRef, failures ...int) *openapi3.Responses {
	opts := []openapi3.NewResponsesOption{openapi3.WithStatus(http.StatusOK, ok)}
	for _, status := range failures {
		opts = append(opts, openapi3.WithStatus(status, jsonResponse(http.StatusText(status), errorSchema())))
	}
	return openapi3.NewResponses(opts...)
}

func queryParam(name string, required bool) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewQueryParameter(name).WithRequired(required).WithSchema(stringSchema())}
}

// Document returns the OpenAPI 3 description of the storefront API
func Document(version string) *openapi3.T {
	htmlOK := &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Page markup").
		WithContent(openapi3.NewContentWithSchema(stringSchema(), []string{"text/html"}))}

	pwaContent := &openapi3.Operation{
		OperationID: "getPageContent",
		Summary:     "Fetch PWA Kit page content server side",
		Parameters:  openapi3.Parameters{queryParam("pageID", true)},
		Responses:   responses(htmlOK, http.StatusBadRequest, http.StatusInternalServerError),
	}

	userByPath := &openapi3.Operation{
		OperationID: "getUser",
		Summary:     "Look a user up in the remote user service",
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewPathParameter("userID").WithSchema(stringSchema())},
		},
		Responses: responses(jsonResponse("User", userSchema()), http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	}

	userByQuery := &openapi3.Operation{
		OperationID: "showUser",
		Summary:     "Look a user up by query string",
		Parameters:  openapi3.Parameters{queryParam("userID", true)},
		Responses:   responses(jsonResponse("User", userSchema()), http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	}

	subscribe := &openapi3.Operation{
		OperationID: "subscribeNewsletter",
		Summary:     "Create or update a newsletter subscription",
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(subscriptionSchema()).
			WithFormDataSchema(subscriptionSchema())},
		Responses: responses(jsonResponse("Subscription stored", objectSchema(map[string]*openapi3.Schema{
			"success": {Type: &openapi3.Types{"boolean"}},
			"message": stringSchema(),
			"email":   stringSchema(),
		}, "success")), http.StatusBadRequest, http.StatusInternalServerError),
	}

	loyalty := &openapi3.Operation{
		OperationID: "getLoyaltyInfo",
		Summary:     "Loyalty tier and points of a customer",
		Parameters:  openapi3.Parameters{queryParam("c_customer_id", false)},
		Responses: responses(jsonResponse("Loyalty info", objectSchema(map[string]*openapi3.Schema{
			"tier":       stringSchema(),
			"points":     {Type: &openapi3.Types{"integer"}},
			"customerID": stringSchema(),
		}))),
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Storefront gateway",
			Version: version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/pwa/content", &openapi3.PathItem{Get: pwaContent}),
			openapi3.WithPath("/users/{userID}", &openapi3.PathItem{Get: userByPath}),
			openapi3.WithPath("/user", &openapi3.PathItem{Get: userByQuery}),
			openapi3.WithPath("/newsletter/subscribe", &openapi3.PathItem{Post: subscribe}),
			openapi3.WithPath("/loyalty-info", &openapi3.PathItem{Get: loyalty}),
		),
	}
}

// Validate checks the document against the OpenAPI 3 rules
func Validate(ctx context.Context, doc *openapi3.T) error {
	return doc.Validate(ctx)
}
