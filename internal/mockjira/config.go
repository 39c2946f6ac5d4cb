package mockjira

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the mock server configuration root.
type Config struct {
	Port        int     `yaml:"port"`
	Prefix      string  `yaml:"prefix,omitempty"` // context path, e.g. /jira
	DataDir     string  `yaml:"dataDir"`
	RandomDelay bool    `yaml:"randomDelay"`
	Username    string  `yaml:"username,omitempty"` // basic auth is enforced when set
	Token       string  `yaml:"token,omitempty"`
	Routes      []Route `yaml:"routes"`
}

// Route defines a single endpoint and how to serve JSON for it.
type Route struct {
	Method     string    `yaml:"method,omitempty"`     // default GET
	Path       string    `yaml:"path"`                 // e.g. /rest/api/2/issue/{key}/transitions
	Status     int       `yaml:"status,omitempty"`     // default 200
	Anonymous  bool      `yaml:"anonymous,omitempty"`  // skip auth, e.g. for avatar images
	Template   bool      `yaml:"template,omitempty"`   // render the data file with text/template first
	ItemsField string    `yaml:"itemsField,omitempty"` // e.g. "issues"; if empty, common names are tried
	Select     *Select   `yaml:"select,omitempty"`     // how to pick the data file
	Paginate   *Paginate `yaml:"paginate,omitempty"`   // nil = no pagination
}

// Select configures how the mock chooses which data file to serve.
type Select struct {
	From         string `yaml:"from,omitempty"`         // "path" | "query" | "body" | "header" | "static" | "none"
	Key          string `yaml:"key,omitempty"`          // name of wildcard/param/field/header
	Regex        string `yaml:"regex,omitempty"`        // optional regex with 1 capture group used as token
	FileTemplate string `yaml:"fileTemplate,omitempty"` // default "%s.json"
	Static       string `yaml:"static,omitempty"`       // used when From == "static"
}

// Paginate defines query based pagination, as used by the Jira search resource.
type Paginate struct {
	StartField   string `yaml:"startField"` // e.g. "startAt"
	LimitField   string `yaml:"limitField"` // e.g. "maxResults"
	TotalField   string `yaml:"totalField"` // e.g. "total"
	ReqStart     string `yaml:"reqStart"`   // request param, e.g. "startAt"
	ReqLimit     string `yaml:"reqLimit"`   // request param, e.g. "maxResults"
	DefaultStart int    `yaml:"defaultStart,omitempty"`
	DefaultLimit int    `yaml:"defaultLimit,omitempty"` // default 50
}

// LoadConfig reads and validates the YAML configuration file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(raw)
}

// ParseConfig decodes raw YAML, rejecting unknown fields, and applies defaults.
func ParseConfig(raw []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		cfg.Port = 8081
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}

	for i := range cfg.Routes {
		rt := &cfg.Routes[i]
		if rt.Method == "" {
			rt.Method = http.MethodGet
		}
		rt.Method = strings.ToUpper(rt.Method)
		if rt.Status == 0 {
			rt.Status = http.StatusOK
		}
		if rt.Select != nil && rt.Select.FileTemplate == "" {
			rt.Select.FileTemplate = "%s.json"
		}
		if p := rt.Paginate; p != nil && p.DefaultLimit <= 0 {
			p.DefaultLimit = 50
		}
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate ensures minimal correctness of all routes.
func validate(cfg Config) error {
	var errs []error
	for _, rt := range cfg.Routes {
		switch {
		case strings.TrimSpace(rt.Path) == "":
			errs = append(errs, errors.New("invalid route: empty path"))
		case rt.Select == nil:
			errs = append(errs, fmt.Errorf("route %s: select is required", rt.Path))
		case strings.EqualFold(rt.Select.From, "static") && strings.TrimSpace(rt.Select.Static) == "":
			errs = append(errs, fmt.Errorf("route %s: select.static must be set when select.from=static", rt.Path))
		}
	}
	return errors.Join(errs...)
}
