package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/neticnz/matcher/internal/domain"
)

// Email bodies are deterministic functions of their inputs; match order is
// preserved from discovery order.

var matchEmailTmpl = template.Must(template.New("match").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #8b5cf6; color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center;">
    <h1 style="margin: 0;">Netic</h1>
    <p style="margin: 10px 0 0 0;">What you want, finds you</p>
  </div>
  <div style="background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px;">
    <h2 style="margin-top: 0;">Great news!</h2>
    <p>We found <strong>{{.Count}} match{{if ne .Count 1}}es{{end}}</strong> for your want: <strong>&quot;{{.WantTitle}}&quot;</strong></p>
    {{range .Matches}}
    <div style="background: white; border: 1px solid #e5e7eb; border-radius: 8px; padding: 20px; margin-bottom: 15px;">
      <div style="font-size: 18px; font-weight: 600;">{{.Title}}</div>
      <div style="color: #6b7280; font-size: 14px;">
        {{if .Price}}${{printf "%.2f" .Price}}{{end}}
        {{if .Location}}&middot; {{.Location}}{{end}}
        {{if .Source}}<br>Source: {{.Source}}{{end}}
      </div>
      {{if .URL}}<a href="{{.URL}}" style="display: inline-block; background: #8b5cf6; color: white; padding: 12px 24px; border-radius: 6px; text-decoration: none; font-weight: 600; margin-top: 10px;">View Listing</a>{{end}}
    </div>
    {{end}}
    <p style="color: #6b7280; font-size: 14px;">Happy hunting! Netic will keep searching and notify you when we find more matches.</p>
  </div>
  <div style="text-align: center; color: #9ca3af; font-size: 12px; margin-top: 30px;">
    <p>You're receiving this because you posted a want on Netic.</p>
  </div>
</body>
</html>`))

type matchEmailData struct {
	WantTitle string
	Count     int
	Matches   []matchEmailRow
}

type matchEmailRow struct {
	Title    string
	Price    float64
	Location string
	URL      string
	Source   string
}

func matchEmailHTML(wantTitle string, matches []domain.Match) (string, error) {
	data := matchEmailData{
		WantTitle: wantTitle,
		Count:     len(matches),
		Matches:   make([]matchEmailRow, 0, len(matches)),
	}
	for _, m := range matches {
		data.Matches = append(data.Matches, matchEmailRow{
			Title:    m.Title,
			Price:    m.Price,
			Location: m.Location,
			URL:      m.URL,
			Source:   strings.ToUpper(m.Source),
		})
	}

	var buf strings.Builder
	if err := matchEmailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute match template: %w", err)
	}
	return buf.String(), nil
}

var offerEmailTmpl = template.Must(template.New("offer").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #10b981; color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center;">
    <h1 style="margin: 0;">Great News!</h1>
  </div>
  <div style="background: #f0fdf4; padding: 30px; border-radius: 0 0 10px 10px;">
    <p><strong>{{.OffererName}}</strong> has what you're looking for: <strong>&quot;{{.WantTitle}}&quot;</strong></p>
    <div style="background: white; border: 2px solid #10b981; border-radius: 8px; padding: 20px; margin: 20px 0;">
      <p><strong>Contact:</strong> {{.OffererEmail}}</p>
      {{if .Message}}<p><strong>Message:</strong> &quot;{{.Message}}&quot;</p>{{end}}
    </div>
    <p style="color: #065f46;">Reach out to them directly to arrange pickup or delivery!</p>
  </div>
</body>
</html>`))

type offerEmailData struct {
	WantTitle    string
	OffererName  string
	OffererEmail string
	Message      string
}

func offerEmailHTML(wantTitle, offererName, offererEmail, message string) (string, error) {
	var buf strings.Builder
	err := offerEmailTmpl.Execute(&buf, offerEmailData{
		WantTitle:    wantTitle,
		OffererName:  offererName,
		OffererEmail: offererEmail,
		Message:      message,
	})
	if err != nil {
		return "", fmt.Errorf("execute offer template: %w", err)
	}
	return buf.String(), nil
}
