package listview

import (
	"time"

	"erp-backend/internal/models"

	"github.com/dustin/go-humanize"
)

const UnknownCreator = "알 수 없음"

// CreatorName is the display name of a joined creator row.
func CreatorName(u *models.User) string {
	if u == nil {
		return UnknownCreator
	}
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	return UnknownCreator
}

// Won formats an amount as Korean won, e.g. ₩1,250,000.
func Won(amount float64) string {
	return "₩" + humanize.CommafWithDigits(amount, 0)
}

func Count(n int) string {
	return humanize.Comma(int64(n))
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
