package config

import (
	"path/filepath"

	"github.com/creasty/defaults"
)

type Configuration struct {
	Server      Server
	Agent       Agent
	Device      Device
	Credentials Credentials
	Auth        Auth
	LogFormat   string `default:"console"`
	LogLevel    string `default:"debug"`
}

type Server struct {
	Address    string `default:"127.0.0.1"`
	HTTPPort   int    `default:"8000"`
	ServerMode string `default:"dev"`
}

type Agent struct {
	DataFolder     string `default:"/var/lib/sync-agent"`
	NumWorkers     int    `default:"1"`
	Timezone       string `default:"Local"`
	MetricsEnabled bool   `default:"true"`
	Version        string `default:"v0.0.0"`
}

type Device struct {
	Transport          string `default:"ble"`
	ID                 string
	ServiceUUID        string `default:"6e400001-b5a3-f393-e0a9-e50e24dcca9e"`
	CharacteristicUUID string `default:"6e400002-b5a3-f393-e0a9-e50e24dcca9e"`
	ChunkSize          int    `default:"20"`
}

// Credentials locates the encrypted credential file and its master key.
// Empty paths resolve inside the data folder.
type Credentials struct {
	File       string
	KeyFile    string
	Passphrase string
}

type Auth struct {
	Enabled     bool `default:"false"`
	JWTFilePath string
}

type ConfigurationOption func(*Configuration)

func NewConfigurationWithOptionsAndDefaults(opts ...ConfigurationOption) *Configuration {
	c := &Configuration{}
	if err := defaults.Set(c); err != nil {
		panic(err)
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

func WithDataFolder(folder string) ConfigurationOption {
	return func(c *Configuration) {
		c.Agent.DataFolder = folder
	}
}

func WithTransport(transport string) ConfigurationOption {
	return func(c *Configuration) {
		c.Device.Transport = transport
	}
}

func (c *Configuration) CredentialsFile() string {
	if c.Credentials.File != "" {
		return c.Credentials.File
	}
	return filepath.Join(c.Agent.DataFolder, "credentials.enc")
}

func (c *Configuration) KeyFile() string {
	if c.Credentials.KeyFile != "" {
		return c.Credentials.KeyFile
	}
	if c.Credentials.Passphrase != "" {
		return filepath.Join(c.Agent.DataFolder, "master.key.age")
	}
	return filepath.Join(c.Agent.DataFolder, "master.key")
}

func (c *Configuration) DatabaseFile() string {
	return filepath.Join(c.Agent.DataFolder, "agent.duckdb")
}
