package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"items-planning/core/planning"
)

const labelSeparator = " - "

// BuildLabel derives the case label from the item number, name, build year and type.
// Empty fields are skipped without a separator.
func BuildLabel(item *planning.Item) string {
	var b strings.Builder
	for _, part := range []string{item.ItemNumber, item.Name, item.BuildYear, item.Type} {
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(labelSeparator)
		}
		b.WriteString(part)
	}
	return b.String()
}

// Fingerprint hashes everything a planning case is derived from. Two runs with the
// same fingerprint would submit identical payloads.
func Fingerprint(item *planning.Item, templateID int, folderName string) string {
	h := sha256.New()
	for _, part := range []string{
		strconv.Itoa(item.ID),
		item.ItemNumber,
		item.Name,
		item.BuildYear,
		item.Type,
		strconv.Itoa(templateID),
		folderName,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
