// Package appupdate checks GitHub releases for a newer cursorusage build.
package appupdate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"
)

const (
	defaultLatestReleaseURL = "https://api.github.com/repos/janekbaraniewski/cursorusage/releases/latest"
	defaultRequestTimeout   = 1500 * time.Millisecond
	binaryName              = "cursorusage"
)

type InstallMethod string

const (
	InstallMethodUnknown   InstallMethod = "unknown"
	InstallMethodHomebrew  InstallMethod = "homebrew"
	InstallMethodGoInstall InstallMethod = "go_install"
)

type CheckOptions struct {
	CurrentVersion   string
	ExecutablePath   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string // canonical semver, empty for dev builds
	LatestVersion   string
	InstallMethod   InstallMethod
	UpgradeHint     string
}

// Check compares the running version against the latest GitHub release.
// Dev and pre-release builds are never reported as outdated.
func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	current := normalizeReleaseVersion(opts.CurrentVersion)
	method := detectInstallMethod(resolveExecutablePath(opts.ExecutablePath))

	result := Result{
		CurrentVersion: current,
		InstallMethod:  method,
		UpgradeHint:    upgradeHint(method),
	}
	if current == "" {
		return result, nil
	}

	latest, err := fetchLatestReleaseVersion(ctx, opts, current)
	if err != nil {
		return result, err
	}
	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	return result, nil
}

func fetchLatestReleaseVersion(ctx context.Context, opts CheckOptions, current string) (string, error) {
	latestURL := strings.TrimSpace(opts.LatestReleaseURL)
	if latestURL == "" {
		latestURL = defaultLatestReleaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, latestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build latest release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", binaryName+"/"+current)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read latest release payload: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("decode latest release payload: invalid JSON")
	}

	tag := gjson.GetBytes(body, "tag_name").String()
	latest := normalizeReleaseVersion(tag)
	if latest == "" {
		return "", fmt.Errorf("latest release tag is not a stable semver: %q", tag)
	}
	return latest, nil
}

func resolveExecutablePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return normalizePath(p)
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil && resolved != "" {
		exe = resolved
	}
	return normalizePath(exe)
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
}

func detectInstallMethod(path string) InstallMethod {
	path = normalizePath(path)
	switch {
	case path == "":
		return InstallMethodUnknown
	case strings.Contains(path, "/cellar/"+binaryName+"/"):
		return InstallMethodHomebrew
	case strings.HasSuffix(path, "/go/bin/"+binaryName), strings.HasSuffix(path, "/go/bin/"+binaryName+".exe"):
		return InstallMethodGoInstall
	}
	if gobin := normalizePath(os.Getenv("GOBIN")); gobin != "" && strings.HasPrefix(path, gobin+"/") {
		return InstallMethodGoInstall
	}
	return InstallMethodUnknown
}

func upgradeHint(method InstallMethod) string {
	switch method {
	case InstallMethodHomebrew:
		return "brew upgrade janekbaraniewski/tap/" + binaryName
	default:
		return "go install github.com/janekbaraniewski/cursorusage/cmd/cursorusage@latest"
	}
}

func normalizeReleaseVersion(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
