package credentials

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	accessTokenKey = "cursorAuth/accessToken"
	cachedEmailKey = "cursorAuth/cachedEmail"
	membershipKey  = "cursorAuth/stripeMembershipType"
)

// AccountInfo is the signed-in account as cached by the Cursor IDE.
type AccountInfo struct {
	Email      string
	Membership string
}

func openStateDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("opening state DB: %w", err)
	}
	return db, nil
}

func readItem(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM ItemTable WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// readAccessToken returns the JWT the Cursor IDE stores for its own API calls.
func readAccessToken(ctx context.Context, path string) (string, error) {
	if !fileExists(path) {
		return "", fmt.Errorf("state DB not found at %s", path)
	}
	db, err := openStateDB(path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	token, err := readItem(ctx, db, accessTokenKey)
	if err != nil {
		return "", fmt.Errorf("querying access token: %w", err)
	}
	return token, nil
}

// ReadAccountInfo reads the cached email and membership type. Missing keys
// leave the corresponding field empty.
func ReadAccountInfo(ctx context.Context, path string) (AccountInfo, error) {
	if path == "" {
		path = DefaultStateDBPath()
	}
	if !fileExists(path) {
		return AccountInfo{}, fmt.Errorf("state DB not found at %s", path)
	}
	db, err := openStateDB(path)
	if err != nil {
		return AccountInfo{}, err
	}
	defer db.Close()

	var info AccountInfo
	info.Email, _ = readItem(ctx, db, cachedEmailKey)
	info.Membership, _ = readItem(ctx, db, membershipKey)
	return info, nil
}
