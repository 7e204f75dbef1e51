package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/dnswlt/apigwext/internal/apigw"
	"github.com/dnswlt/apigwext/internal/store"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidEndpointType = errors.New("invalid endpoint type")
)

// EndpointRule describes the x-amazon-apigateway-endpoint-configuration to set on a server.
type EndpointRule struct {
	Type                      string   `yaml:"type"` // One of EDGE, REGIONAL, PRIVATE (case-insensitive). May be empty.
	CustomDomainName          string   `yaml:"customDomainName"`
	VPCEndpointIDs            []string `yaml:"vpcEndpointIds"` // Only valid for PRIVATE endpoints.
	DisableExecuteAPIEndpoint bool     `yaml:"disableExecuteApiEndpoint"`
}

// Variable is a server variable added to matching servers.
type Variable struct {
	Default     string   `yaml:"default"`
	Enum        []string `yaml:"enum"`
	Description string   `yaml:"description"`
}

// ServerRule selects servers by URL and says how to annotate them.
type ServerRule struct {
	// URL of the servers this rule applies to. Empty or "*" matches all servers.
	URL       string               `yaml:"url"`
	Endpoint  *EndpointRule        `yaml:"endpoint"`
	Variables map[string]*Variable `yaml:"variables"`
}

// Bundle is the root of the annotation configuration YAML.
type Bundle struct {
	Servers []*ServerRule `yaml:"servers"`
}

func Load(st store.Store, configPath string) (*Bundle, error) {
	bs, err := st.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %v", configPath, err)
	}
	bundle, err := Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration YAML in %q: %w", configPath, err)
	}
	return bundle, nil
}

// Parse strictly decodes and validates a configuration YAML document.
func Parse(data []byte) (*Bundle, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var bundle Bundle
	if err := dec.Decode(&bundle); err != nil {
		return nil, err
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Validate checks all rules and normalizes endpoint types to upper case.
func (b *Bundle) Validate() error {
	for i, r := range b.Servers {
		if r == nil {
			return fmt.Errorf("servers[%d]: empty rule", i)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("servers[%d]: %w", i, err)
		}
	}
	return nil
}

func (r *ServerRule) Validate() error {
	for name, v := range r.Variables {
		if v == nil || v.Default == "" {
			return fmt.Errorf("variable %q has no default value", name)
		}
	}
	e := r.Endpoint
	if e == nil {
		return nil
	}
	e.Type = strings.ToUpper(strings.TrimSpace(e.Type))
	switch e.Type {
	case "", apigw.EndpointEdge, apigw.EndpointRegional, apigw.EndpointPrivate:
	default:
		return fmt.Errorf("%w %q (want one of %s, %s, %s)", ErrInvalidEndpointType, e.Type,
			apigw.EndpointEdge, apigw.EndpointRegional, apigw.EndpointPrivate)
	}
	if len(e.VPCEndpointIDs) > 0 && e.Type != apigw.EndpointPrivate {
		return fmt.Errorf("vpcEndpointIds require endpoint type %s, got %q", apigw.EndpointPrivate, e.Type)
	}
	if e.CustomDomainName != "" && e.Type == apigw.EndpointPrivate {
		return fmt.Errorf("customDomainName is not supported for %s endpoints", apigw.EndpointPrivate)
	}
	return nil
}

// Matches reports whether the rule applies to a server with the given URL.
func (r *ServerRule) Matches(url string) bool {
	return r.URL == "" || r.URL == "*" || r.URL == url
}

// Apply annotates s according to r. Variables are added first, then the
// endpoint type, then the execute-api flag.
func (r *ServerRule) Apply(s *openapi3.Server) {
	for name, v := range r.Variables {
		apigw.WithVariable(s, name, &openapi3.ServerVariable{
			Default:     v.Default,
			Enum:        v.Enum,
			Description: v.Description,
		})
	}
	e := r.Endpoint
	if e == nil {
		return
	}
	switch e.Type {
	case apigw.EndpointEdge:
		apigw.AsEdgeEndpoint(s, e.CustomDomainName)
	case apigw.EndpointRegional:
		apigw.AsRegionalEndpoint(s, e.CustomDomainName)
	case apigw.EndpointPrivate:
		apigw.AsPrivateEndpoint(s, e.VPCEndpointIDs...)
	}
	if e.DisableExecuteAPIEndpoint {
		apigw.DisableExecuteAPIEndpoint(s)
	}
}
