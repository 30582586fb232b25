package credentials

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func makeJWT(t *testing.T, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".c2lnbmF0dXJl"
}

func writeStateDB(t *testing.T, items map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.vscdb")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value BLOB)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for k, v := range items {
		if _, err := db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, ?)`, k, v); err != nil {
			t.Fatalf("insert %s: %v", k, err)
		}
	}
	return path
}

type memStore struct {
	token string
	saved []string
	err   error
}

func (s *memStore) SessionToken() string { return s.token }

func (s *memStore) SaveSessionToken(token string) error {
	s.saved = append(s.saved, token)
	if s.err != nil {
		return s.err
	}
	s.token = token
	return nil
}

type stubPrompter struct {
	value string
	err   error
	calls int
}

func (p *stubPrompter) PromptToken(context.Context) (string, error) {
	p.calls++
	return p.value, p.err
}

func TestResolve_AutoDiscoveryWins(t *testing.T) {
	jwt := makeJWT(t, `{"sub":"auth0|user_ABC123","exp":1}`)
	dbPath := writeStateDB(t, map[string]string{accessTokenKey: jwt})

	prompter := &stubPrompter{value: "typed"}
	r := &Resolver{
		StateDBPath: dbPath,
		Store:       &memStore{token: "stored"},
		Prompt:      prompter,
	}

	cred, ok := r.Resolve(context.Background())
	if !ok {
		t.Fatal("expected a credential")
	}
	want := "WorkosCursorSessionToken=user_ABC123%3A%3A" + jwt
	if cred != want {
		t.Errorf("cred = %q, want %q", cred, want)
	}
	if prompter.calls != 0 {
		t.Errorf("prompt should not be called, got %d calls", prompter.calls)
	}
}

func TestResolve_FallsBackToStoredValue(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   string
	}{
		{name: "bare value gets prefix", stored: "user_1%3A%3Aabc", want: "WorkosCursorSessionToken=user_1%3A%3Aabc"},
		{name: "prefixed value kept", stored: "WorkosCursorSessionToken=xyz", want: "WorkosCursorSessionToken=xyz"},
		{name: "whitespace trimmed", stored: "  xyz \n", want: "WorkosCursorSessionToken=xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{
				StateDBPath: filepath.Join(t.TempDir(), "missing.vscdb"),
				Store:       &memStore{token: tt.stored},
			}
			cred, ok := r.Resolve(context.Background())
			if !ok {
				t.Fatal("expected a credential")
			}
			if cred != tt.want {
				t.Errorf("cred = %q, want %q", cred, tt.want)
			}
		})
	}
}

func TestResolve_OverrideBeatsStore(t *testing.T) {
	r := &Resolver{
		StateDBPath: filepath.Join(t.TempDir(), "missing.vscdb"),
		Override:    "from-flag",
		Store:       &memStore{token: "from-file"},
	}
	cred, ok := r.Resolve(context.Background())
	if !ok || cred != "WorkosCursorSessionToken=from-flag" {
		t.Errorf("cred = %q, ok = %v", cred, ok)
	}
}

func TestResolve_PromptSavesAndPrefixes(t *testing.T) {
	store := &memStore{}
	prompter := &stubPrompter{value: " raw-token "}
	r := &Resolver{
		StateDBPath: filepath.Join(t.TempDir(), "missing.vscdb"),
		Store:       store,
		Prompt:      prompter,
	}

	cred, ok := r.Resolve(context.Background())
	if !ok {
		t.Fatal("expected a credential")
	}
	if cred != "WorkosCursorSessionToken=raw-token" {
		t.Errorf("cred = %q", cred)
	}
	if len(store.saved) != 1 || store.saved[0] != "raw-token" {
		t.Errorf("saved = %v, want [raw-token]", store.saved)
	}
}

func TestResolve_PromptSaveErrorStillReturnsCredential(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	r := &Resolver{
		StateDBPath: filepath.Join(t.TempDir(), "missing.vscdb"),
		Store:       store,
		Prompt:      &stubPrompter{value: "tok"},
	}
	cred, ok := r.Resolve(context.Background())
	if !ok || cred != "WorkosCursorSessionToken=tok" {
		t.Errorf("cred = %q, ok = %v", cred, ok)
	}
}

func TestResolve_NothingConfigured(t *testing.T) {
	tests := []struct {
		name     string
		prompter Prompter
	}{
		{name: "no prompter"},
		{name: "prompt declined", prompter: &stubPrompter{}},
		{name: "prompt failed", prompter: &stubPrompter{err: errors.New("no tty")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{
				StateDBPath: filepath.Join(t.TempDir(), "missing.vscdb"),
				Store:       &memStore{},
				Prompt:      tt.prompter,
			}
			cred, ok := r.Resolve(context.Background())
			if ok || cred != "" {
				t.Errorf("Resolve() = %q, %v; want no credential", cred, ok)
			}
		})
	}
}

func TestResolve_DiscoveryFailuresAreSilent(t *testing.T) {
	tests := []struct {
		name  string
		items map[string]string
	}{
		{name: "key missing", items: map[string]string{"other": "x"}},
		{name: "not a jwt", items: map[string]string{accessTokenKey: "opaque"}},
		{name: "payload not base64", items: map[string]string{accessTokenKey: "a.!!!.c"}},
		{name: "payload not json", items: map[string]string{accessTokenKey: "a." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".c"}},
		{name: "sub without separator", items: map[string]string{accessTokenKey: "a." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"user_1"}`)) + ".c"}},
		{name: "sub with empty id", items: map[string]string{accessTokenKey: "a." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"auth0|"}`)) + ".c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{
				StateDBPath: writeStateDB(t, tt.items),
				Store:       &memStore{token: "fallback"},
			}
			cred, ok := r.Resolve(context.Background())
			if !ok || cred != "WorkosCursorSessionToken=fallback" {
				t.Errorf("Resolve() = %q, %v; want stored fallback", cred, ok)
			}
		})
	}
}

func TestWithoutPrompt(t *testing.T) {
	prompter := &stubPrompter{value: "typed"}
	r := &Resolver{StateDBPath: filepath.Join(t.TempDir(), "missing.vscdb"), Prompt: prompter}

	quiet := r.WithoutPrompt()
	if _, ok := quiet.Resolve(context.Background()); ok {
		t.Error("WithoutPrompt resolver should not produce a credential")
	}
	if prompter.calls != 0 {
		t.Errorf("prompt called %d times", prompter.calls)
	}
	if r.Prompt == nil {
		t.Error("original resolver lost its prompter")
	}
}

func TestUserIDFromToken(t *testing.T) {
	id, err := userIDFromToken(makeJWT(t, `{"sub":"github|user_42|extra"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "user_42" {
		t.Errorf("id = %q, want user_42", id)
	}

	padded := "h." + base64.URLEncoding.EncodeToString([]byte(`{"sub":"a|b"}`)) + ".s"
	if id, err := userIDFromToken(padded); err != nil || id != "b" {
		t.Errorf("padded payload: id = %q, err = %v", id, err)
	}
}

func TestReadAccountInfo(t *testing.T) {
	dbPath := writeStateDB(t, map[string]string{
		cachedEmailKey: "dev@example.com",
		membershipKey:  "pro",
	})

	info, err := ReadAccountInfo(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("ReadAccountInfo: %v", err)
	}
	if info.Email != "dev@example.com" || info.Membership != "pro" {
		t.Errorf("info = %+v", info)
	}

	if _, err := ReadAccountInfo(context.Background(), filepath.Join(t.TempDir(), "none.vscdb")); err == nil {
		t.Error("expected error for missing DB")
	}
}

func TestNormalizeCredential(t *testing.T) {
	tests := map[string]string{
		"":                               "",
		"   ":                            "",
		"abc":                            "WorkosCursorSessionToken=abc",
		"WorkosCursorSessionToken=abc":   "WorkosCursorSessionToken=abc",
		"\tWorkosCursorSessionToken=x\n": "WorkosCursorSessionToken=x",
	}
	for in, want := range tests {
		if got := NormalizeCredential(in); got != want {
			t.Errorf("NormalizeCredential(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("WorkosCursorSessionToken=user_123%3A%3Aeyjhbgcioi"); got != "WorkosCursorSessionToken=user_1...cioi" {
		t.Errorf("Redact long = %q", got)
	}
	if got := Redact("short"); got != "WorkosCursorSessionToken=****" {
		t.Errorf("Redact short = %q", got)
	}
}

func TestCursorAppSupportDirFor(t *testing.T) {
	tests := []struct {
		goos, home, appData, want string
	}{
		{"darwin", "/Users/me", "", filepath.Join("/Users/me", "Library", "Application Support", "Cursor")},
		{"linux", "/home/me", "", filepath.Join("/home/me", ".config", "Cursor")},
		{"windows", `C:\Users\me`, `C:\Users\me\AppData\Roaming`, filepath.Join(`C:\Users\me\AppData\Roaming`, "Cursor")},
		{"plan9", "/usr/me", "", ""},
		{"linux", "", "", ""},
	}
	for _, tt := range tests {
		if got := cursorAppSupportDirFor(tt.goos, tt.home, tt.appData); got != tt.want {
			t.Errorf("cursorAppSupportDirFor(%q) = %q, want %q", tt.goos, got, tt.want)
		}
	}
}
