package credentials

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all"
)

var ErrNoBrowserCookie = errors.New("no " + CookieName + " cookie found in local browsers")

// ImportBrowserCookie looks for a logged-in cursor.com session in the local
// browsers' cookie stores and returns it as a normalized credential. This is
// an explicit user action, never part of Resolve.
func ImportBrowserCookie(ctx context.Context) (string, error) {
	cookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix("cursor.com"), kooky.Name(CookieName))
	if err != nil {
		// Some stores fail (locked profile, missing keyring) while others
		// still yield cookies.
		log.Printf("[credentials] reading browser cookies: %v", err)
	}

	var best string
	for _, c := range cookies {
		if c == nil {
			continue
		}
		if v := strings.TrimSpace(c.Value); len(v) > len(best) {
			best = v
		}
	}
	if best == "" {
		return "", ErrNoBrowserCookie
	}
	return NormalizeCredential(best), nil
}
