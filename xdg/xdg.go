// Package xdg resolves the XDG Base Directory Specification and loads the
// per-application configuration file.
//
// See: http://standards.freedesktop.org/basedir-spec/basedir-spec-latest.html
package xdg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/guac"
	"github.com/roach88/guac/cmdtree"
)

// Context keys owned by this package.
const (
	// Key holds the resolved Dirs.
	Key = "xdg.dirs"

	// KeyConfig holds the map[string]any loaded from the application's
	// config.yaml. Set only when the root command declares an AppID and
	// the file exists.
	KeyConfig = "xdg.config"
)

// ConfigFileName is the per-application configuration file looked up under
// the config home.
const ConfigFileName = "config.yaml"

// Dirs holds the resolved base directories. Empty strings and empty
// slices mean the directory is unavailable (for example no $HOME on the
// platform, or a relative path that the spec requires ignoring).
type Dirs struct {
	DataHome   string   // $XDG_DATA_HOME, default $HOME/.local/share
	ConfigHome string   // $XDG_CONFIG_HOME, default $HOME/.config
	CacheHome  string   // $XDG_CACHE_HOME, default $HOME/.cache
	RuntimeDir string   // $XDG_RUNTIME_DIR, no default
	DataDirs   []string // $XDG_DATA_DIRS, default /usr/local/share, /usr/share
	ConfigDirs []string // $XDG_CONFIG_DIRS, default /etc/xdg
}

// Resolve computes the base directories from an environment. All paths
// must be absolute; a relative path is invalid and ignored, per the spec.
func Resolve(getenv func(string) string) Dirs {
	home := getenv("HOME")
	d := Dirs{
		DataHome:   getenv("XDG_DATA_HOME"),
		ConfigHome: getenv("XDG_CONFIG_HOME"),
		CacheHome:  getenv("XDG_CACHE_HOME"),
		RuntimeDir: getenv("XDG_RUNTIME_DIR"),
	}
	// The spec requires $HOME for the per-user defaults; without it the
	// explicit variables are all we can use.
	if home != "" {
		if d.DataHome == "" {
			d.DataHome = filepath.Join(home, ".local", "share")
		}
		if d.ConfigHome == "" {
			d.ConfigHome = filepath.Join(home, ".config")
		}
		if d.CacheHome == "" {
			d.CacheHome = filepath.Join(home, ".cache")
		}
	}
	d.DataHome = absOrEmpty(d.DataHome)
	d.ConfigHome = absOrEmpty(d.ConfigHome)
	d.CacheHome = absOrEmpty(d.CacheHome)
	d.RuntimeDir = absOrEmpty(d.RuntimeDir)
	d.DataDirs = splitDirs(getenv("XDG_DATA_DIRS"), "/usr/local/share:/usr/share")
	d.ConfigDirs = splitDirs(getenv("XDG_CONFIG_DIRS"), "/etc/xdg")
	return d
}

func absOrEmpty(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return ""
	}
	return path
}

func splitDirs(value, fallback string) []string {
	if value == "" {
		value = fallback
	}
	var dirs []string
	for _, dir := range strings.Split(value, ":") {
		dir = strings.TrimSuffix(dir, "/")
		if dir != "" && filepath.IsAbs(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// ConfigPath returns the path of the application's config file, or ""
// when the config home is unavailable.
func (d Dirs) ConfigPath(appID string) string {
	if d.ConfigHome == "" || appID == "" {
		return ""
	}
	return filepath.Join(d.ConfigHome, appID, ConfigFileName)
}

// CachePath returns a path under the application's cache directory, or ""
// when the cache home is unavailable.
func (d Dirs) CachePath(appID string, elem ...string) string {
	if d.CacheHome == "" || appID == "" {
		return ""
	}
	return filepath.Join(append([]string{d.CacheHome, appID}, elem...)...)
}

// FromContext returns the resolved Dirs, or ok=false when the ingredient
// is not in the recipe.
func FromContext(ctx *guac.Context) (Dirs, bool) {
	if v, err := ctx.Get(Key); err == nil {
		if dirs, ok := v.(Dirs); ok {
			return dirs, true
		}
	}
	return Dirs{}, false
}

// ConfigFromContext returns the loaded application configuration, or nil
// when no config file was present.
func ConfigFromContext(ctx *guac.Context) map[string]any {
	if v, err := ctx.Get(KeyConfig); err == nil {
		if cfg, ok := v.(map[string]any); ok {
			return cfg
		}
	}
	return nil
}

// Ingredient resolves the base directories at the added phase and, when
// the root command declares an AppID, loads its config.yaml at early-init.
//
// Context keys written: Key, KeyConfig.
type Ingredient struct {
	guac.Base
}

// New creates the xdg ingredient.
func New() *Ingredient {
	return &Ingredient{}
}

// Added resolves the base directories from the process environment.
func (i *Ingredient) Added(ctx *guac.Context) error {
	ctx.Set(Key, Resolve(os.Getenv))
	return nil
}

// EarlyInit loads the application's config file when one exists. A
// missing file is fine; a malformed one is a developer-facing fault and
// stops the run.
func (i *Ingredient) EarlyInit(ctx *guac.Context) error {
	dirs, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	tree, err := cmdtree.TreeFromContext(ctx)
	if err != nil {
		return nil
	}
	path := dirs.ConfigPath(tree.Command.Info().AppID)
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	var cfg map[string]any
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	ctx.Set(KeyConfig, cfg)
	return nil
}
