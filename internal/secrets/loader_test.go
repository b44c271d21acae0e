package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token\n"), 0o600))
	emptyFile := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(emptyFile, []byte("\n"), 0o600))
	t.Setenv("HIREMIND_TEST_TOKEN", " env-token ")

	cases := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file wins", src: Source{File: tokenFile, Env: "HIREMIND_TEST_TOKEN", Value: "inline"}, want: "file-token"},
		{name: "env over value", src: Source{Env: "HIREMIND_TEST_TOKEN", Value: "inline"}, want: "env-token"},
		{name: "unset env falls back", src: Source{Env: "HIREMIND_TEST_UNSET", Value: " inline "}, want: "inline"},
		{name: "empty file", src: Source{Name: "api token", File: emptyFile}, wantErr: "api token file"},
		{name: "missing file", src: Source{File: filepath.Join(dir, "nope")}, wantErr: "reading secret"},
		{name: "nothing", src: Source{Name: "api token"}, wantErr: "api token is not configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(tc.src)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
