package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
)

const (
	appEnvVar = "APP_ENV"

	facetVar = "APP_ENV_FACET"
)

var logger = diag.CreateLogger()

// AppEnv represents app env
type AppEnv struct {
	// ServiceName is a name of a current service
	ServiceName string

	// Name is a env name. By default taken from APP_ENV. Corresponds to NODE_ENV
	Name string

	// Facet is a env facet like preprod (for production). By default taken from APP_ENV_FACET. Corresponds to NODE_APP_INSTANCE
	Facet string
}

type appEnvCfg struct {
	programName string
}

type appEnvOpt func(*appEnvCfg)

func withProgramName(programName string) appEnvOpt {
	return func(cfg *appEnvCfg) {
		cfg.programName = programName
	}
}

// isTestBinary checks a name of a binary built by go test.
// Testing flags are not registered yet when package vars are initialized
// so the name is the only thing available at that point
func isTestBinary(programName string) bool {
	return strings.HasSuffix(strings.TrimSuffix(filepath.Base(programName), ".exe"), ".test")
}

// NewAppEnv creates a new instance of the app env from os env
// Will use "dev" by default or "test" when running tests
func NewAppEnv(serviceName string, opts ...appEnvOpt) AppEnv {
	cfg := appEnvCfg{}
	if len(os.Args) > 0 {
		cfg.programName = os.Args[0]
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	appEnv := os.Getenv(appEnvVar)
	if appEnv == "" {
		appEnv = "dev"
		if isTestBinary(cfg.programName) {
			appEnv = "test"
		}
	}
	return AppEnv{
		Name:        appEnv,
		Facet:       os.Getenv(facetVar),
		ServiceName: serviceName,
	}
}

// Source is an abstraction to read params
type Source interface {
	GetParameters(params []param) (map[param]interface{}, error)
}

type sourceBinding struct {
	params []param
	source Source
}

// ServiceConfig gives typed access to loaded params.
// Asking for a param that was not built with a builder is a programming
// error and will panic
type ServiceConfig interface {
	StringParam(p StringParam) StringVal
	IntParam(p IntParam) IntVal
	BoolParam(p BoolParam) BoolVal
	DurationParam(p DurationParam) DurationVal
}

type serviceConfig struct {
	sources []sourceBinding
	values  map[param]paramValue
}

func (c *serviceConfig) lookup(p param) paramValue {
	val, ok := c.values[p]
	if !ok {
		panic(fmt.Sprintf("Unknown parameter: %v", p))
	}
	return val
}

func (c *serviceConfig) StringParam(p StringParam) StringVal {
	return c.lookup(p).(StringVal)
}

func (c *serviceConfig) IntParam(p IntParam) IntVal {
	return c.lookup(p).(IntVal)
}

func (c *serviceConfig) BoolParam(p BoolParam) BoolVal {
	return c.lookup(p).(BoolVal)
}

func (c *serviceConfig) DurationParam(p DurationParam) DurationVal {
	return c.lookup(p).(DurationVal)
}

// ServiceConfigOpt is an option of the service config
type ServiceConfigOpt func(cfg *serviceConfig)

// WithSource binds params to a source they should be loaded from
func WithSource(binding sourceBinding) ServiceConfigOpt {
	return func(cfg *serviceConfig) {
		cfg.sources = append(cfg.sources, binding)
	}
}

func newServiceConfig(opts ...ServiceConfigOpt) *serviceConfig {
	cfg := &serviceConfig{values: map[param]paramValue{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func loadInitialValues(cfg *serviceConfig) error {
	for _, binding := range cfg.sources {
		values, err := binding.source.GetParameters(binding.params)
		if err != nil {
			return err
		}
		logger.Debug(nil, "Fetched %v (of %v requested) values", len(values), len(binding.params))
		for _, p := range binding.params {
			rawValue, ok := values[p]
			if !ok {
				rawValue, ok = p.defaultValue()
			}
			if !ok {
				return errors.Errorf("Parameter %v not found", p)
			}
			value := p.emptyValue()
			if err := value.setValue(rawValue); err != nil {
				return errors.Wrapf(err, "Failed to set value for parameter %v", p)
			}
			cfg.values[p] = value
		}
	}
	return nil
}

// Load will load all params from their sources
func Load(opts ...ServiceConfigOpt) (ServiceConfig, error) {
	cfg := newServiceConfig(opts...)
	if err := loadInitialValues(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
