// Package apigw decorates OpenAPI servers with AWS API Gateway vendor extensions.
//
// All functions mutate the given server and return it, so calls can be chained:
//
//	apigw.DisableExecuteAPIEndpoint(apigw.AsRegionalEndpoint(s, "api.example.com"))
package apigw

import (
	"github.com/dnswlt/apigwext/internal/extensions"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	// EndpointConfigurationKey is the vendor extension holding the endpoint configuration.
	EndpointConfigurationKey = "x-amazon-apigateway-endpoint-configuration"

	EndpointEdge     = "EDGE"
	EndpointRegional = "REGIONAL"
	EndpointPrivate  = "PRIVATE"

	fieldTypes                     = "types"
	fieldVPCEndpointIDs            = "vpcEndpointIds"
	fieldDisableExecuteAPIEndpoint = "disableExecuteApiEndpoint"
)

// EndpointConfiguration collects the settings of a single configuration step.
// Unset fields (nil slices, false) are not emitted, so they never overwrite
// values set by an earlier step.
type EndpointConfiguration struct {
	Types                     []string
	VPCEndpointIDs            []string
	DisableExecuteAPIEndpoint bool
}

// Extensions returns the vendor extensions described by c.
func (c *EndpointConfiguration) Extensions() extensions.Map {
	obj := make(map[string]any)
	if c.Types != nil {
		obj[fieldTypes] = toList(c.Types)
	}
	if c.VPCEndpointIDs != nil {
		obj[fieldVPCEndpointIDs] = toList(c.VPCEndpointIDs)
	}
	if c.DisableExecuteAPIEndpoint {
		obj[fieldDisableExecuteAPIEndpoint] = true
	}
	return extensions.Map{EndpointConfigurationKey: obj}
}

// toList converts xs to the []any representation used by decoded JSON,
// so that built and parsed documents compare equal.
func toList(xs []string) []any {
	l := make([]any, len(xs))
	for i, x := range xs {
		l[i] = x
	}
	return l
}

// nonEmpty returns the non-empty strings of xs, never nil.
func nonEmpty(xs ...string) []string {
	res := []string{}
	for _, x := range xs {
		if x != "" {
			res = append(res, x)
		}
	}
	return res
}

// WithVariable adds a server variable (e.g. basePath) to s.
func WithVariable(s *openapi3.Server, key string, v *openapi3.ServerVariable) *openapi3.Server {
	if s.Variables == nil {
		s.Variables = make(map[string]*openapi3.ServerVariable)
	}
	s.Variables[key] = v
	return s
}

// AsPrivateEndpoint marks s as a private API reachable through the given VPC endpoints.
// Empty IDs are ignored.
func AsPrivateEndpoint(s *openapi3.Server, vpcEndpointIDs ...string) *openapi3.Server {
	return WithEndpointConfiguration(s, func(c *EndpointConfiguration) {
		c.VPCEndpointIDs = nonEmpty(vpcEndpointIDs...)
		c.Types = []string{EndpointPrivate}
	})
}

// AsEdgeEndpoint marks s as an edge-optimized API. customDomainName may be empty.
func AsEdgeEndpoint(s *openapi3.Server, customDomainName string) *openapi3.Server {
	return WithEndpointConfiguration(s, func(c *EndpointConfiguration) {
		c.Types = nonEmpty(EndpointEdge, customDomainName)
	})
}

// AsRegionalEndpoint marks s as a regional API. customDomainName may be empty.
func AsRegionalEndpoint(s *openapi3.Server, customDomainName string) *openapi3.Server {
	return WithEndpointConfiguration(s, func(c *EndpointConfiguration) {
		c.Types = nonEmpty(EndpointRegional, customDomainName)
	})
}

// DisableExecuteAPIEndpoint prevents clients from invoking the API through the
// default https://{api_id}.execute-api.{region}.amazonaws.com endpoint.
func DisableExecuteAPIEndpoint(s *openapi3.Server) *openapi3.Server {
	return WithEndpointConfiguration(s, func(c *EndpointConfiguration) {
		c.DisableExecuteAPIEndpoint = true
	})
}

// WithEndpointConfiguration runs setup on an empty EndpointConfiguration and
// merges the result into the extensions of s.
func WithEndpointConfiguration(s *openapi3.Server, setup func(*EndpointConfiguration)) *openapi3.Server {
	var c EndpointConfiguration
	setup(&c)
	if s.Extensions == nil {
		s.Extensions = make(map[string]any)
	}
	extensions.Merge(s.Extensions, c.Extensions())
	return s
}

// EndpointConfigurationOf reads the endpoint configuration currently stored on s.
// The second return value is false if s has no object-valued endpoint configuration.
func EndpointConfigurationOf(s *openapi3.Server) (EndpointConfiguration, bool) {
	obj, ok := extensions.Get(s.Extensions, EndpointConfigurationKey)
	if !ok {
		return EndpointConfiguration{}, false
	}
	c := EndpointConfiguration{
		Types:          fromList(obj[fieldTypes]),
		VPCEndpointIDs: fromList(obj[fieldVPCEndpointIDs]),
	}
	if b, ok := obj[fieldDisableExecuteAPIEndpoint].(bool); ok {
		c.DisableExecuteAPIEndpoint = b
	}
	return c, true
}

// fromList accepts both []string and []any of strings; other values yield nil.
func fromList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		res := make([]string, 0, len(l))
		for _, x := range l {
			if s, ok := x.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}
