package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, NewDefaultConfig(), cfg)
	assert.Equal(t, "http://localhost:8000/api/chat", cfg.ChatEndpoint())
	assert.Equal(t, "http://localhost:8000/api/test", cfg.HealthEndpoint())

	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BOOKCHAT_API_URL", "https://book-api.example.com")

	v := newViper(nil)
	v.SetEnvPrefix("BOOKCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	require.NoError(t, v.BindEnv("api_url", "BOOKCHAT_API_URL", "DOCUSAURUS_API_URL"))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "https://book-api.example.com/api/chat", cfg.ChatEndpoint())
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `api_url = "https://book-api.example.com/"
request_timeout = "5s"
log_file = "bookchat.log"
suggestions = ["What is ROS 2?"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v := newViper(nil)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "https://book-api.example.com/api/chat", cfg.ChatEndpoint())
	assert.Equal(t, []string{"What is ROS 2?"}, cfg.Suggestions)
	assert.True(t, filepath.IsAbs(cfg.LogFile))
	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadFromValidation(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantErr   string
	}{
		{name: "empty api url", overrides: map[string]any{"api_url": ""}, wantErr: "api_url is not configured"},
		{name: "unsupported scheme", overrides: map[string]any{"api_url": "ftp://example.com"}, wantErr: "scheme must be http or https"},
		{name: "missing host", overrides: map[string]any{"api_url": "http://"}, wantErr: "missing host"},
		{name: "unparsable timeout", overrides: map[string]any{"request_timeout": "soon"}, wantErr: "invalid request_timeout"},
		{name: "zero timeout", overrides: map[string]any{"request_timeout": "0s"}, wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(newViper(tt.overrides))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("BOOKCHAT_TEST_URL", "http://api.internal:8000")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "literal", input: "http://localhost:8000", want: "http://localhost:8000"},
		{name: "dollar form", input: "$BOOKCHAT_TEST_URL", want: "http://api.internal:8000"},
		{name: "braced form", input: "${BOOKCHAT_TEST_URL}", want: "http://api.internal:8000"},
		{name: "unset variable", input: "$BOOKCHAT_TEST_UNSET", want: ""},
		{name: "bare dollar", input: "$", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVar(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFromExpandsAPIURL(t *testing.T) {
	t.Setenv("BOOK_API", "https://answers.example.org")

	cfg, err := LoadFrom(newViper(map[string]any{"api_url": "${BOOK_API}"}))
	require.NoError(t, err)
	assert.Equal(t, "https://answers.example.org", cfg.APIURL)
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://localhost:8000", "/api/chat", "http://localhost:8000/api/chat"},
		{"http://localhost:8000/", "api/chat", "http://localhost:8000/api/chat"},
		{"http://localhost:8000//", "//api/chat", "http://localhost:8000/api/chat"},
		{"https://example.com/prefix", "/api/test", "https://example.com/prefix/api/test"},
		{"https://example.com", "", "https://example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, joinURL(tt.base, tt.path), "joinURL(%q, %q)", tt.base, tt.path)
	}
}

func TestResolvePath(t *testing.T) {
	abs, err := ResolvePath("/var/log/bookchat.log")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/bookchat.log", abs)

	rel, err := ResolvePath("bookchat.log")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))
}
