package review

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// DefaultPageSize is how many entries a review list shows before "more".
const DefaultPageSize = 10

// PlanID is the id of the LeetCode study plan entry offered on first use.
const PlanID = "top-100-liked"

// PlanItem is the LeetCode study plan shortcut.
var PlanItem = Item{
	ID:    PlanID,
	Title: "LeetCode Top 100 Liked",
	Link:  "https://leetcode.cn/studyplan/top-100-liked/",
}

// NormalizeLink trims link and prefixes https:// when it has no scheme.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + link
}

// ErrIncompleteLink is returned when a link item lacks a title or a link.
var ErrIncompleteLink = errors.New("title and link are required")

// LinkItem builds an item for an external link. The id is derived from the
// normalized link, so adding the same link twice hits the same entry.
func LinkItem(title, link string) (Item, error) {
	normalized := NormalizeLink(link)
	title = strings.TrimSpace(title)
	if title == "" || normalized == "" {
		return Item{}, ErrIncompleteLink
	}
	return Item{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte(normalized)).String(),
		Title: title,
		Link:  normalized,
	}, nil
}

// Page returns at most visible entries.
func Page[T any](entries []T, visible int) []T {
	if visible < 0 {
		visible = 0
	}
	if visible >= len(entries) {
		return entries
	}
	return entries[:visible]
}
