package git

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToDirectoryName(t *testing.T) {
	client := NewClient("", "")

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "https URL",
			url:  "https://github.com/example/captions.git",
			want: filepath.Join("github.com", "example", "captions"),
		},
		{
			name: "https URL without .git suffix",
			url:  "https://github.com/example/captions",
			want: filepath.Join("github.com", "example", "captions"),
		},
		{
			name: "ssh scp形式",
			url:  "git@github.com:example/captions.git",
			want: filepath.Join("github.com", "example", "captions"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.URLToDirectoryName(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSSHAuthWithoutKey(t *testing.T) {
	client := NewClient("", "")

	auth, err := client.getSSHAuth()
	require.NoError(t, err)
	assert.Nil(t, auth)
}
