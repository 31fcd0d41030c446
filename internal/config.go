package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kyuubi/internal/render"
	"github.com/starford/kyuubi/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var documentIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Document DocumentConfig    `yaml:"document"`
	Storage  StorageConfig     `yaml:"storage"`
	Render   RenderConfig      `yaml:"render"`
	Events   EventsConfig      `yaml:"events"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Document.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DocumentConfig names the single document and how it is exported.
type DocumentConfig struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	ExportFilename string `yaml:"export_filename"`
}

// Validate validates the document configuration.
func (c *DocumentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required, validation.Match(documentIDRe)),
		validation.Field(&c.ExportFilename, validation.Required, validation.Match(documentIDRe)),
	)
}

// StorageConfig selects the persistence driver.
//
// Debounce coalesces rapid edits into one write after a quiet period; zero
// writes on every edit. Watch reloads external edits of the file driver's
// document.
type StorageConfig struct {
	Driver     string        `yaml:"driver"`
	Dir        string        `yaml:"dir"`
	SQLitePath string        `yaml:"sqlite_path"`
	Debounce   time.Duration `yaml:"debounce"`
	Watch      bool          `yaml:"watch"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(storage.DriverFile, storage.DriverSQLite, storage.DriverMemory)),
		validation.Field(&c.Dir, validation.When(c.Driver == storage.DriverFile, validation.Required)),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if c.Watch && c.Driver != storage.DriverFile {
		return fmt.Errorf("storage: watch requires the %q driver", storage.DriverFile)
	}
	return nil
}

// Options converts the section into storage options for document id.
func (c *StorageConfig) Options(id string) storage.Options {
	return storage.Options{
		Driver:     c.Driver,
		Dir:        c.Dir,
		SQLitePath: c.SQLitePath,
		DocumentID: id,
	}
}

// RenderConfig configures the preview renderer.
type RenderConfig struct {
	Extensions     []string `yaml:"extensions"`
	Sanitize       bool     `yaml:"sanitize"`
	HardWraps      bool     `yaml:"hard_wraps"`
	HighlightStyle string   `yaml:"highlight_style"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Extensions, validation.Each(validation.By(knownExtension))),
	)
}

// Options converts the section into renderer options.
func (c *RenderConfig) Options() render.Options {
	return render.Options{
		Extensions:     c.Extensions,
		Sanitize:       c.Sanitize,
		HardWraps:      c.HardWraps,
		HighlightStyle: c.HighlightStyle,
	}
}

func knownExtension(value any) error {
	name, _ := value.(string)
	if !render.KnownExtension(name) {
		return errors.New("unknown render extension")
	}
	return nil
}

// EventsConfig configures the preview event stream.
type EventsConfig struct {
	OutlineThrottle time.Duration `yaml:"outline_throttle"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8080,
			},
		},
		Document: DocumentConfig{
			ID:             "kyuubi-content",
			Title:          "Kyuubi Editor",
			ExportFilename: "document.md",
		},
		Storage: StorageConfig{
			Driver:   storage.DriverFile,
			Dir:      "./data",
			Debounce: 300 * time.Millisecond,
		},
		Render: RenderConfig{
			Extensions:     append([]string(nil), render.DefaultExtensions...),
			Sanitize:       true,
			HighlightStyle: render.DefaultHighlightStyle,
		},
		Events: EventsConfig{
			OutlineThrottle: 2 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
