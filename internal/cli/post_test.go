package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDraft(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
		wantErr  bool
	}{
		{
			name:     "simple substitution",
			input:    "title: {{ .ENV.POST_TITLE }}",
			envVars:  map[string]string{"POST_TITLE": "weekend ride"},
			expected: "title: weekend ride",
		},
		{
			name:     "multiple variables",
			input:    "title: {{ .ENV.POST_TITLE }}\ncategory: {{ .ENV.POST_CATEGORY }}",
			envVars:  map[string]string{"POST_TITLE": "weekend ride", "POST_CATEGORY": "cycling"},
			expected: "title: weekend ride\ncategory: cycling",
		},
		{
			name:     "no placeholders",
			input:    "title: plain\ncontent: here",
			expected: "title: plain\ncontent: here",
		},
		{
			name:    "missing variable errors",
			input:   "title: {{ .ENV.NO_SUCH_VAR }}",
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			input:   "title: {{ .ENV.POST_TITLE }",
			envVars: map[string]string{"POST_TITLE": "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			result, err := renderDraft([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestRenderDraftEnvFile(t *testing.T) {
	dir := t.TempDir()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(origWd) })
	require.NoError(t, os.Chdir(dir))

	require.NoError(t, os.WriteFile(".env", []byte("POST_CATEGORY=climbing\n"), 0644))

	// shell environment wins over the .env file
	t.Setenv("POST_TITLE", "from shell")

	result, err := renderDraft([]byte("title: {{ .ENV.POST_TITLE }}\ncategory: {{ .ENV.POST_CATEGORY }}"))
	require.NoError(t, err)
	assert.Equal(t, "title: from shell\ncategory: climbing", string(result))
}

func TestRenderDraftNamesMissingVar(t *testing.T) {
	_, err := renderDraft([]byte("x: {{ .ENV.DEFINITELY_UNSET_VAR }}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFINITELY_UNSET_VAR")
}
