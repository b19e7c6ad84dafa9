package waitlist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/trustlink-waitlist/internal/models"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
)

const csvContentType = "text/csv"

var exportHeader = []string{
	"ID", "Name", "Email", "Phone", "Actor Type",
	"City", "Referral Source", "Created At", "Notified", "Notes",
}

// renderCSV writes the header and one line per entry joined by "\n", without a
// trailing newline. Name and notes are wrapped in double quotes as-is; quotes
// inside them are not escaped.
func renderCSV(entries []models.WaitlistEntry) []byte {
	var b strings.Builder

	b.WriteString(strings.Join(exportHeader, ","))
	for i := range entries {
		b.WriteByte('\n')
		b.WriteString(strings.Join(csvRecord(&entries[i]), ","))
	}

	return []byte(b.String())
}

func csvRecord(e *models.WaitlistEntry) []string {
	return []string{
		strconv.FormatUint(uint64(e.ID), 10),
		quoted(e.Name),
		e.Email,
		e.Phone,
		e.ActorType,
		deref(e.City),
		deref(e.ReferralSource),
		e.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
		strconv.FormatBool(e.Notified),
		quoted(deref(e.Notes)),
	}
}

func quoted(s string) string {
	return `"` + s + `"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func exportFilename(now time.Time) string {
	return fmt.Sprintf("%s%d.csv", constants.ExportFilenamePrefix, now.UnixMilli())
}
