package core

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/embed"
)

// Environment variables holding fetch credentials.
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvHFToken     = "HF_TOKEN"
)

// ErrMissingCredential is returned when a required token is absent.
var ErrMissingCredential = errors.New("required credential missing")

// CredentialCheck is the outcome for one environment variable.
type CredentialCheck struct {
	Name     string
	Purpose  string
	Required bool
	Present  bool
	Masked   string
}

// CheckResult holds every credential check of a run.
type CheckResult struct {
	Checks []CredentialCheck
	Passed bool
}

// RunCredentialCheck inspects the credentials used by the fetch collaborators and the embedder.
// lookup is usually os.LookupEnv after an optional .env file was loaded.
// The OpenAI key is only required when embeddings are enabled.
func RunCredentialCheck(lookup func(string) (string, bool), embedEnabled bool) CheckResult {
	specs := []CredentialCheck{
		{Name: EnvGitHubToken, Purpose: "GitHub repository and activity fetch", Required: true},
		{Name: EnvHFToken, Purpose: "Hugging Face model fetch"},
		{Name: embed.EnvAPIKey, Purpose: "embeddings", Required: embedEnabled},
	}

	result := CheckResult{Passed: true}
	for _, c := range specs {
		value, ok := lookup(c.Name)
		value = strings.TrimSpace(value)
		c.Present = ok && value != ""
		if c.Present {
			c.Masked = contract.MaskSecret(value)
		} else if c.Required {
			result.Passed = false
		}
		result.Checks = append(result.Checks, c)
	}
	return result
}

// ExecuteCheck prints the credential report and fails when a required token is absent.
func ExecuteCheck(w io.Writer, lookup func(string) (string, bool), embedEnabled bool) error {
	result := RunCredentialCheck(lookup, embedEnabled)
	printCheckResult(w, result)
	if !result.Passed {
		var missing []string
		for _, c := range result.Checks {
			if c.Required && !c.Present {
				missing = append(missing, c.Name)
			}
		}
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}

// printCheckResult prints one line per credential, padded to the longest name.
func printCheckResult(w io.Writer, result CheckResult) {
	_, _ = fmt.Fprintln(w, "Credential Check Results:")

	maxNameLen := 0
	for _, c := range result.Checks {
		maxNameLen = max(maxNameLen, len(c.Name))
	}

	for _, c := range result.Checks {
		status := "missing"
		switch {
		case c.Present:
			status = "set (" + c.Masked + ")"
		case c.Required:
			status = "MISSING (required)"
		}
		_, _ = fmt.Fprintf(w, "  %-*s %s  [%s]\n", maxNameLen+1, c.Name+":", status, c.Purpose)
	}
	_, _ = fmt.Fprintln(w)

	if result.Passed {
		_, _ = fmt.Fprintln(w, "✅ All required credentials are present")
	} else {
		_, _ = fmt.Fprintln(w, "❌ Credential check failed")
	}
}
