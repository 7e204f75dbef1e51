package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dnswlt/apigwext/internal/apigw"
	"github.com/dnswlt/apigwext/internal/config"
	"github.com/dnswlt/apigwext/internal/document"
	"github.com/dnswlt/apigwext/internal/store"
	"github.com/peterbourgon/ff/v3"
)

var (
	// Version is the application version.
	// It is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
)

// Options contains program options that can be set via command-line flags or environment variables.
type Options struct {
	RootDir    string
	In         string
	Out        string
	Format     string
	ConfigFile string
	Validate   bool

	// Single-rule settings, used if ConfigFile is empty.
	ServerURL                 string
	EndpointType              string
	CustomDomain              string
	VPCEndpointIDs            string
	DisableExecuteAPIEndpoint bool
}

func main() {
	if len(os.Args) < 2 {
		runAnnotate(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "annotate":
		runAnnotate(os.Args[2:])
	case "show":
		runShow(os.Args[2:])
	case "version":
		fmt.Println(Version)
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			runAnnotate(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command %q. Available commands: annotate, show, version\n", os.Args[1])
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var res []string
	for _, x := range strings.Split(s, ",") {
		if x = strings.TrimSpace(x); x != "" {
			res = append(res, x)
		}
	}
	return res
}

// bundleFromFlags builds a single-rule configuration from the command-line options.
func bundleFromFlags(opts Options) (*config.Bundle, error) {
	b := &config.Bundle{
		Servers: []*config.ServerRule{
			{
				URL: opts.ServerURL,
				Endpoint: &config.EndpointRule{
					Type:                      opts.EndpointType,
					CustomDomainName:          opts.CustomDomain,
					VPCEndpointIDs:            splitList(opts.VPCEndpointIDs),
					DisableExecuteAPIEndpoint: opts.DisableExecuteAPIEndpoint,
				},
			},
		},
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func runAnnotate(args []string) {
	var opts Options
	fs := flag.NewFlagSet("apigwext annotate", flag.ExitOnError)
	fs.StringVar(&opts.RootDir, "root-dir", ".", "Directory that -in, -out and -config are relative to")
	fs.StringVar(&opts.In, "in", "openapi.yaml", "OpenAPI 3 document to annotate (JSON or YAML)")
	fs.StringVar(&opts.Out, "out", "", "Output file. If empty, the annotated document is written to stdout")
	fs.StringVar(&opts.Format, "format", "", "Output format (json or yaml). If empty, derived from -out, or -in when writing to stdout")
	fs.StringVar(&opts.ConfigFile, "config", "", "Annotation configuration YAML. If empty, the single-rule flags below are used")
	fs.BoolVar(&opts.Validate, "validate", false, "Validate the annotated document before writing it")
	fs.StringVar(&opts.ServerURL, "server-url", "", "URL of the server to annotate. Empty means all servers")
	fs.StringVar(&opts.EndpointType, "endpoint-type", "", "Endpoint type: EDGE, REGIONAL or PRIVATE")
	fs.StringVar(&opts.CustomDomain, "custom-domain", "", "Custom domain name for EDGE and REGIONAL endpoints")
	fs.StringVar(&opts.VPCEndpointIDs, "vpc-endpoint-ids", "", "Comma-separated VPC endpoint IDs for PRIVATE endpoints")
	fs.BoolVar(&opts.DisableExecuteAPIEndpoint, "disable-execute-api-endpoint", false, "Disable the default execute-api endpoint")

	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("APIGWEXT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Using config from flags/env vars: %+v", opts)

	st := store.NewDiskStore(opts.RootDir)

	var bundle *config.Bundle
	if opts.ConfigFile != "" {
		bundle, err = config.Load(st, opts.ConfigFile)
	} else {
		bundle, err = bundleFromFlags(opts)
	}
	if err != nil {
		log.Fatalf("Invalid annotation config: %v", err)
	}

	doc, err := document.Load(st, opts.In)
	if err != nil {
		log.Fatalf("Could not load document: %v", err)
	}
	n, err := document.Annotate(doc, bundle)
	if err != nil {
		log.Fatalf("Could not annotate document: %v", err)
	}
	log.Printf("Applied %d server annotation(s) to %s", n, opts.In)

	if opts.Validate {
		if err := doc.Validate(context.Background()); err != nil {
			log.Fatalf("Annotated document is invalid: %v", err)
		}
	}

	format, err := outputFormat(opts)
	if err != nil {
		log.Fatalf("Invalid -format: %v", err)
	}
	data, err := document.Encode(doc, format)
	if err != nil {
		log.Fatalf("Could not encode document: %v", err)
	}
	if opts.Out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := st.WriteFile(opts.Out, data); err != nil {
		log.Fatalf("Could not write %s: %v", opts.Out, err)
	}
	log.Printf("Wrote annotated document to %s", opts.Out)
}

func outputFormat(opts Options) (document.Format, error) {
	if opts.Format != "" {
		return document.ParseFormat(opts.Format)
	}
	if opts.Out != "" {
		return document.FormatFromPath(opts.Out), nil
	}
	return document.FormatFromPath(opts.In), nil
}

// runShow prints the endpoint configuration of every server in a document.
func runShow(args []string) {
	var opts Options
	fs := flag.NewFlagSet("apigwext show", flag.ExitOnError)
	fs.StringVar(&opts.RootDir, "root-dir", ".", "Directory that -in is relative to")
	fs.StringVar(&opts.In, "in", "openapi.yaml", "OpenAPI 3 document to inspect (JSON or YAML)")

	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("APIGWEXT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(1)
	}

	doc, err := document.Load(store.NewReadOnlyDiskStore(opts.RootDir), opts.In)
	if err != nil {
		log.Fatalf("Could not load document: %v", err)
	}
	for _, s := range doc.Servers {
		c, ok := apigw.EndpointConfigurationOf(s)
		if !ok {
			fmt.Printf("%s: no endpoint configuration\n", s.URL)
			continue
		}
		fmt.Printf("%s: types=%s vpcEndpointIds=%s disableExecuteApiEndpoint=%t\n",
			s.URL, strings.Join(c.Types, ","), strings.Join(c.VPCEndpointIDs, ","), c.DisableExecuteAPIEndpoint)
	}
}
