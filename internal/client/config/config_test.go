package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"newsfeed-cli"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	full := writeConfig(t, `{"server_endpoint_addr":"feed.example:443","request_timeout":"30s"}`)
	partial := writeConfig(t, `{"request_timeout":5000000000}`)

	tests := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "defaults",
			want: Config{ServerEndpointAddr: "127.0.0.1:50051", RequestTimeout: 10 * time.Second},
		},
		{
			name: "json file",
			args: []string{"-c", full},
			want: Config{ServerEndpointAddr: "feed.example:443", RequestTimeout: 30 * time.Second},
		},
		{
			name: "json keeps defaults for missing keys",
			args: []string{"-config", partial},
			want: Config{ServerEndpointAddr: "127.0.0.1:50051", RequestTimeout: 5 * time.Second},
		},
		{
			name: "flags override json",
			args: []string{"-c", full, "-a", "localhost:9090", "-t", "3"},
			want: Config{ServerEndpointAddr: "localhost:9090", RequestTimeout: 3 * time.Second},
		},
		{
			name: "address flag leaves json timeout alone",
			args: []string{"-c", full, "-a", "localhost:9090"},
			want: Config{ServerEndpointAddr: "localhost:9090", RequestTimeout: 30 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			got := LoadConfig()
			assert.Empty(t, cmp.Diff(tt.want, *got))
		})
	}
}

func TestParseFlags_BadTimeoutPanics(t *testing.T) {
	setArgs(t, "-t", "soon")

	cfg := &Config{}
	require.Panics(t, func() { parseFlags(cfg) })
}

func TestParseJson_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		setArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("malformed", func(t *testing.T) {
		setArgs(t, "-c", writeConfig(t, `{ not json`))
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("bad duration", func(t *testing.T) {
		setArgs(t, "-c", writeConfig(t, `{"request_timeout":"soon"}`))
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
