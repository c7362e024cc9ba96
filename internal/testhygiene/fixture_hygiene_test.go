package testhygiene

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// Keys long enough to be real; fixtures use short placeholders like
	// "sk_live_secret".
	apiKeyPattern = regexp.MustCompile(`\b(?:tier_sk|sk_live|sk_test)_[A-Za-z0-9]{20,}\b`)
	bearerPattern = regexp.MustCompile(`Bearer [A-Za-z0-9\-_.]{40,}`)
)

func TestFixtureHygiene_NoRealCredentials(t *testing.T) {
	repoRoot := findRepoRoot(t)

	var findings []string
	err := filepath.WalkDir(repoRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(repoRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			base := filepath.Base(path)
			if path != repoRoot && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")) {
				return filepath.SkipDir
			}
			if base == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}

		if !shouldScanFixtureFile(rel) {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(raw)

		for _, key := range apiKeyPattern.FindAllString(content, -1) {
			findings = append(findings, fmt.Sprintf("%s: contains what looks like a real API key %q", rel, key))
		}
		for _, token := range bearerPattern.FindAllString(content, -1) {
			findings = append(findings, fmt.Sprintf("%s: contains a long bearer token %q", rel, token))
		}
		for _, email := range emailPattern.FindAllString(content, -1) {
			domain := emailDomain(email)
			if !isAllowedFixtureEmailDomain(domain) {
				findings = append(findings, fmt.Sprintf("%s: contains non-synthetic email %q", rel, email))
			}
		}

		return nil
	})
	if err != nil {
		t.Fatalf("fixture hygiene scan failed: %v", err)
	}

	if len(findings) > 0 {
		t.Fatalf("fixture hygiene violations:\n%s", strings.Join(findings, "\n"))
	}
}

func TestPatterns(t *testing.T) {
	if !apiKeyPattern.MatchString("key := \"tier_sk_0123456789abcdefghijKLMN\"") {
		t.Error("long tier key not detected")
	}
	if apiKeyPattern.MatchString("TIER_KEY=sk_live_secret") {
		t.Error("short placeholder flagged")
	}
	if !isAllowedFixtureEmailDomain("example.com") || isAllowedFixtureEmailDomain("tier.run") {
		t.Error("email domain allow list is wrong")
	}
}

func shouldScanFixtureFile(rel string) bool {
	if strings.HasPrefix(rel, "internal/testhygiene/") {
		return false
	}
	if strings.HasSuffix(rel, "_test.go") {
		return true
	}
	if strings.Contains(rel, "/testdata/") {
		return true
	}
	return false
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find repo root from %q", dir)
		}
		dir = parent
	}
}

func emailDomain(email string) string {
	parts := strings.SplitN(strings.ToLower(email), "@", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func isAllowedFixtureEmailDomain(domain string) bool {
	switch domain {
	case "example.com", "example.org", "example.net", "example.test", "example.invalid", "localhost", "test.local":
		return true
	default:
		return strings.HasSuffix(domain, ".example.invalid") || strings.HasSuffix(domain, ".example.test")
	}
}
