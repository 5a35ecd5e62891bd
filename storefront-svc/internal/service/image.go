package service

import (
	"strings"

	"huongque-storefront/storefront-svc/internal/domain"
)

const imageFolder = "anh_cac_mon"

// NormalizeImagePath maps a menu image reference onto the site-root image
// folder. Absolute paths and URLs are kept. Blank input gives the default image.
func NormalizeImagePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return domain.DefaultImage
	}

	if strings.HasPrefix(p, "http") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/") {
		return p
	}

	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}

	if strings.Contains(p, imageFolder) {
		return "/" + p
	}
	return "/" + imageFolder + "/" + p
}
