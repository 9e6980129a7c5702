package agent

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

// Type represents a specific type of an agent Config. Config's with
// this type can create Agents of the corresponding type.
type Type string

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be deserialized.
//
// No Type's are registered with this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers an agent's Type with a concrete Config type so
// that upon deserialization of a TypedConfig, Configs of type
// agentType are deserialized into the concrete type of config.
func Register(agentType Type, config Config) {
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// TypedConfig implements functionality for typing a Config. In this
// way, a Config can explicitly have its type stored so that when
// deserializing the Config, we can deserialize it into its concrete
// type without knowing beforehand or declaring beforehand a variable
// of its concrete type.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config and returns it as a
// TypedConfig which explicitly holds its Type.
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "unmarshalJSON")
	}

	var typeName Type
	if err := json.Unmarshal(m["Type"], &typeName); err != nil {
		return errors.Wrap(err, "unmarshalJSON")
	}
	ty, found := registeredTypes[typeName]
	if !found {
		return errors.Errorf("unmarshalJSON: agent type %q not registered",
			typeName)
	}

	value := reflect.New(ty)
	if raw, ok := m["Config"]; ok {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return errors.Wrap(err, "unmarshalJSON")
		}
	}

	t.Type = typeName
	t.Config = value.Elem().Interface().(Config)
	return nil
}
