package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestRunCredentialCheck(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]string
		embed  bool
		passed bool
	}{
		{"github token only", map[string]string{"GITHUB_TOKEN": "ghp_abcdef"}, false, true},
		{"nothing set", map[string]string{}, false, false},
		{"blank github token", map[string]string{"GITHUB_TOKEN": "  "}, false, false},
		{"embed needs openai key", map[string]string{"GITHUB_TOKEN": "ghp_abcdef"}, true, false},
		{"embed with openai key", map[string]string{"GITHUB_TOKEN": "ghp_abcdef", "OPENAI_API_KEY": "sk-123456"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RunCredentialCheck(envOf(tt.vars), tt.embed)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Len(t, result.Checks, 3)
		})
	}
}

func TestExecuteCheck(t *testing.T) {
	var buf bytes.Buffer
	err := ExecuteCheck(&buf, envOf(map[string]string{"GITHUB_TOKEN": "ghp_abcdef", "HF_TOKEN": "hf_xyz123"}), false)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "ghp_******")
	assert.Contains(t, out, "hf_x*****")
	assert.NotContains(t, out, "abcdef")
	assert.Contains(t, out, "All required credentials are present")

	buf.Reset()
	err = ExecuteCheck(&buf, envOf(nil), false)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.ErrorContains(t, err, "GITHUB_TOKEN")
	assert.Contains(t, buf.String(), "MISSING (required)")
}
