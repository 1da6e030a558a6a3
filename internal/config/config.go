// Package config resolves the Shaarli instance URI and API secret from
// command-line values or an INI configuration file.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"

	"github.com/shaarli/shaarli-client-go/internal/errors"
	"github.com/shaarli/shaarli-client-go/internal/logger"
)

// DefaultSection holds the credentials of the default instance.
const DefaultSection = "shaarli"

// Options are the credential sources given on the command line.
type Options struct {
	// ConfigPath replaces the default search paths when set.
	ConfigPath string
	// Instance selects the [shaarli:<instance>] section.
	Instance string
	URL      string
	Secret   string
}

// Credentials identify and authenticate against one Shaarli instance.
type Credentials struct {
	URL    string `ini:"url" toml:"url" validate:"required"`
	Secret string `ini:"secret" toml:"secret" validate:"required"`
	// Source is the file the credentials were read from, empty when they
	// came from the command line.
	Source string `ini:"-" toml:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("ini"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SearchPaths returns the files tried, in order, when no explicit
// configuration file is given.
func SearchPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "shaarli", "client.ini"),
			filepath.Join(home, ".shaarli_client.ini"),
		)
	}
	return append(paths, "shaarli_client.ini")
}

// SectionName returns the INI section holding the credentials of instance.
func SectionName(instance string) string {
	if instance == "" {
		return DefaultSection
	}
	return DefaultSection + ":" + instance
}

// Resolve returns the credentials to use. Command-line values win when both
// the URL and the secret are given; otherwise they are read from the first
// configuration file found.
func Resolve(opts Options, log *logger.Logger) (Credentials, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("config")

	if opts.URL != "" && opts.Secret != "" {
		log.Warn("Passing credentials as arguments is unsafe and should be used for debugging only")
		return Credentials{URL: opts.URL, Secret: opts.Secret}, nil
	}

	path, err := findFile(opts.ConfigPath)
	if err != nil {
		return Credentials{}, err
	}
	log.Infof("Reading configuration from: %s", path)

	return Load(path, opts.Instance)
}

// Load reads the credentials of instance from the file at path. Files with
// a .toml extension hold one table per section; anything else is INI.
func Load(path, instance string) (Credentials, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return loadTOML(path, instance)
	}

	file, err := ini.Load(path)
	if err != nil {
		return Credentials{}, errors.NewConfigurationErrorf("cannot read %s: %v", path, err)
	}

	name := SectionName(instance)
	section, err := file.GetSection(name)
	if err != nil {
		return Credentials{}, errors.NewConfigurationErrorf("missing entry: '%s'", name)
	}

	var creds Credentials
	if err := section.MapTo(&creds); err != nil {
		return Credentials{}, errors.NewConfigurationErrorf("cannot read section '%s': %v", name, err)
	}
	creds.Source = path

	if err := check(creds, name); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func loadTOML(path, instance string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, errors.NewConfigurationErrorf("cannot read %s: %v", path, err)
	}

	var sections map[string]Credentials
	if err := toml.Unmarshal(data, &sections); err != nil {
		return Credentials{}, errors.NewConfigurationErrorf("cannot read %s: %v", path, err)
	}

	name := SectionName(instance)
	creds, ok := sections[name]
	if !ok {
		return Credentials{}, errors.NewConfigurationErrorf("missing entry: '%s'", name)
	}
	creds.Source = path

	if err := check(creds, name); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// check reports the first missing key of a section.
func check(creds Credentials, section string) error {
	err := validate.Struct(creds)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.NewConfigurationErrorf("missing entry: '%s'", fieldErrs[0].Field())
	}
	return errors.NewConfigurationErrorf("invalid section '%s': %v", section, err)
}

func findFile(explicit string) (string, error) {
	candidates := SearchPaths()
	if explicit != "" {
		candidates = []string{explicit}
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.NewConfigurationError("no configuration file found")
}
