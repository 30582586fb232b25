package appupdate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeReleaseVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid with prefix", input: "v1.2.3", want: "v1.2.3"},
		{name: "valid without prefix", input: "1.2.3", want: "v1.2.3"},
		{name: "short form", input: "v1.4", want: "v1.4.0"},
		{name: "pre-release skipped", input: "v1.2.3-rc.1", want: ""},
		{name: "dev skipped", input: "dev", want: ""},
		{name: "empty skipped", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeReleaseVersion(tt.input); got != tt.want {
				t.Fatalf("normalizeReleaseVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectInstallMethod(t *testing.T) {
	t.Setenv("GOBIN", "")

	tests := []struct {
		path string
		want InstallMethod
	}{
		{path: "/opt/homebrew/Cellar/cursorusage/1.2.3/bin/cursorusage", want: InstallMethodHomebrew},
		{path: "/Users/test/go/bin/cursorusage", want: InstallMethodGoInstall},
		{path: "/usr/local/bin/cursorusage", want: InstallMethodUnknown},
		{path: "", want: InstallMethodUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := detectInstallMethod(tt.path); got != tt.want {
				t.Fatalf("detectInstallMethod(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDetectInstallMethodHonoursGOBIN(t *testing.T) {
	t.Setenv("GOBIN", "/opt/tools/bin")
	if got := detectInstallMethod("/opt/tools/bin/cursorusage"); got != InstallMethodGoInstall {
		t.Fatalf("detectInstallMethod = %q, want go_install", got)
	}
}

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Error("missing User-Agent")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		status     int
		body       string
		wantUpdate bool
		wantLatest string
		wantErr    bool
	}{
		{name: "newer release", current: "v0.3.0", status: http.StatusOK, body: `{"tag_name":"v0.4.1"}`, wantUpdate: true, wantLatest: "v0.4.1"},
		{name: "same release", current: "0.4.1", status: http.StatusOK, body: `{"tag_name":"v0.4.1"}`, wantLatest: "v0.4.1"},
		{name: "older release", current: "v1.0.0", status: http.StatusOK, body: `{"tag_name":"v0.9.9"}`, wantLatest: "v0.9.9"},
		{name: "http error", current: "v1.0.0", status: http.StatusForbidden, body: `{}`, wantErr: true},
		{name: "invalid json", current: "v1.0.0", status: http.StatusOK, body: `<html>`, wantErr: true},
		{name: "pre-release tag", current: "v1.0.0", status: http.StatusOK, body: `{"tag_name":"v2.0.0-beta"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := releaseServer(t, tt.status, tt.body)
			res, err := Check(context.Background(), CheckOptions{
				CurrentVersion:   tt.current,
				ExecutablePath:   "/usr/local/bin/cursorusage",
				LatestReleaseURL: server.URL,
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if res.UpdateAvailable != tt.wantUpdate {
				t.Errorf("UpdateAvailable = %v, want %v", res.UpdateAvailable, tt.wantUpdate)
			}
			if res.LatestVersion != tt.wantLatest {
				t.Errorf("LatestVersion = %q, want %q", res.LatestVersion, tt.wantLatest)
			}
		})
	}
}

func TestCheckSkipsDevBuilds(t *testing.T) {
	res, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "dev",
		LatestReleaseURL: "http://127.0.0.1:1/unreachable",
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.UpdateAvailable || res.LatestVersion != "" {
		t.Fatalf("dev build should not be checked: %+v", res)
	}
	if res.UpgradeHint == "" {
		t.Fatal("expected an upgrade hint")
	}
}
