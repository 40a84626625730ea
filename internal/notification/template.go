package notification

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/parks"
)

const alertEmailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #2d6a4f;">Campsites just opened up!</h2>
  <p>{{ .SiteCount }} site{{ if gt .SiteCount 1 }}s{{ end }} matching your alert became available.</p>
  <table style="border-collapse: collapse; width: 100%;">
    <tr style="background: #2d6a4f; color: #fff;">
      <th style="padding: 8px; text-align: left;">Park</th>
      <th style="padding: 8px; text-align: left;">Site</th>
      <th style="padding: 8px; text-align: left;">Check-in</th>
      <th style="padding: 8px; text-align: left;">Type</th>
      <th style="padding: 8px; text-align: left;">Price</th>
      <th style="padding: 8px;"></th>
    </tr>
    {{ range .Sites }}
    <tr style="border-bottom: 1px solid #ddd;">
      <td style="padding: 8px;">{{ .ParkName }}</td>
      <td style="padding: 8px;">{{ .SiteName }}</td>
      <td style="padding: 8px;">{{ .CheckIn }}{{ if .Weekend }} &#9733;{{ end }}</td>
      <td style="padding: 8px;">{{ .SiteType }}</td>
      <td style="padding: 8px;">{{ .Price }}</td>
      <td style="padding: 8px;">{{ if .BookingURL }}<a href="{{ .BookingURL }}" style="color: #2d6a4f;">Book now</a>{{ end }}</td>
    </tr>
    {{ end }}
  </table>
  <p style="color: #888; font-size: 12px;">&#9733; weekend date. Sites book fast; availability may have changed since this alert was generated.</p>
  <p style="color: #888; font-size: 12px;">Sent {{ .GeneratedAt }}.</p>
</body>
</html>`

var alertTmpl = template.Must(template.New("alert_email").Parse(alertEmailTemplate))

type alertEmailSite struct {
	ParkName   string
	SiteName   string
	CheckIn    string
	Weekend    bool
	SiteType   string
	Price      string
	BookingURL string
}

type alertEmailData struct {
	SiteCount   int
	Sites       []alertEmailSite
	GeneratedAt string
}

// RenderAlertEmail produces the subject and HTML body for one alert email.
func RenderAlertEmail(sites []models.AvailabilityRecord, now time.Time) (subject, body string, err error) {
	if len(sites) == 0 {
		return "", "", fmt.Errorf("no sites to render")
	}

	data := alertEmailData{
		SiteCount:   len(sites),
		GeneratedAt: now.Format("Jan 2, 2006 15:04 MST"),
	}
	parkNames := make(map[string]bool)
	for _, site := range sites {
		name := parks.DisplayName(site.Park)
		parkNames[name] = true

		price := "n/a"
		if site.Price != nil {
			price = fmt.Sprintf("$%.2f", *site.Price)
		}
		entry := alertEmailSite{
			ParkName: name,
			SiteName: site.SiteName,
			CheckIn:  site.CheckInDate.Format("Mon, Jan 2 2006"),
			Weekend:  site.IsWeekend(),
			SiteType: string(site.SiteType),
			Price:    price,
		}
		if site.BookingURL != nil {
			entry.BookingURL = *site.BookingURL
		}
		data.Sites = append(data.Sites, entry)
	}

	var sb strings.Builder
	if err := alertTmpl.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render alert email: %w", err)
	}

	names := make([]string, 0, len(parkNames))
	for name := range parkNames {
		names = append(names, name)
	}
	if len(names) == 1 {
		subject = fmt.Sprintf("Campsite alert: %d available at %s", len(sites), names[0])
	} else {
		subject = fmt.Sprintf("Campsite alert: %d sites available", len(sites))
	}

	return subject, sb.String(), nil
}
