package config

// SaveSessionTokenTo persists the manual session token (read-modify-write).
// An empty token clears it.
func SaveSessionTokenTo(path, token string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.SessionToken = token
	return SaveTo(path, cfg)
}

// FileStore binds the session-token persistence to one config file. It
// satisfies credentials.TokenStore.
type FileStore struct {
	Path string
}

func NewFileStore(path string) FileStore {
	if path == "" {
		path = ConfigPath()
	}
	return FileStore{Path: path}
}

func (s FileStore) SessionToken() string {
	cfg, err := LoadFrom(s.Path)
	if err != nil {
		return ""
	}
	return cfg.SessionToken
}

func (s FileStore) SaveSessionToken(token string) error {
	return SaveSessionTokenTo(s.Path, token)
}
