package platform

import (
	"fmt"

	"skill-sync-backend/internal/domain"
)

var profileURLTemplates = map[string]string{
	domain.PlatformLeetCode:   "https://leetcode.com/u/%s/",
	domain.PlatformHackerRank: "https://www.hackerrank.com/profile/%s",
	domain.PlatformCodecademy: "https://www.codecademy.com/profiles/%s",
}

// ProfileURL returns the canonical public profile URL, or "" for unknown platforms
func ProfileURL(platformName, username string) string {
	tmpl, ok := profileURLTemplates[platformName]
	if !ok {
		return ""
	}
	return fmt.Sprintf(tmpl, username)
}
