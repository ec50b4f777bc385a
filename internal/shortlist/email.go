package shortlist

import (
	"html/template"
	"strings"

	"go.uber.org/zap"
)

// htmlBody is the HTML part of the shortlist email. Inline styles only,
// since mail clients strip stylesheets.
const htmlBody = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;padding:24px;">
    <div style="background-color:#4a7c59;color:#ffffff;padding:20px 24px;border-radius:8px 8px 0 0;">
      <h1 style="margin:0;font-size:22px;">Your Daycare Shortlist</h1>
      <p style="margin:8px 0 0;font-size:14px;">{{len .Daycares}} daycare{{if ne (len .Daycares) 1}}s{{end}} near {{.SearchAddress}}</p>
    </div>
    <div style="background-color:#ffffff;padding:8px 24px 24px;border-radius:0 0 8px 8px;">
      {{range .Daycares}}
      <div style="border-bottom:1px solid #e5e5e5;padding:16px 0;">
        <h2 style="margin:0 0 4px;font-size:17px;color:#333333;">{{.Name}}</h2>
        <p style="margin:0 0 4px;font-size:14px;color:#666666;">{{.Address}}, {{.PostalCode}}</p>
        <p style="margin:0 0 4px;font-size:14px;color:#666666;">{{printf "%.2f" .DistanceKM}} km away</p>
        {{if .Phone}}<p style="margin:0 0 4px;font-size:14px;color:#666666;">{{.Phone}}</p>{{end}}
        {{if .RatingDisplay}}<p style="margin:0 0 4px;font-size:14px;color:#666666;">&#9733; {{.RatingDisplay}}</p>{{end}}
        {{if .Website}}<p style="margin:0 0 4px;font-size:14px;"><a href="{{.Website}}" style="color:#4a7c59;">Website</a></p>{{end}}
        <p style="margin:8px 0 0;">
          {{if .CWELCC}}<span style="display:inline-block;background-color:#e3f2e6;color:#2e6b3e;font-size:12px;padding:3px 8px;border-radius:10px;margin-right:6px;">CWELCC</span>{{end}}
          {{if .Subsidy}}<span style="display:inline-block;background-color:#e8f0fb;color:#2a5894;font-size:12px;padding:3px 8px;border-radius:10px;">Subsidy</span>{{end}}
        </p>
      </div>
      {{end}}
      <p style="margin:20px 0 0;font-size:12px;color:#999999;text-align:center;">Sent from Find My Daycare</p>
    </div>
  </div>
</body>
</html>`

var htmlTmpl = template.Must(template.New("shortlist").Parse(htmlBody))

type emailData struct {
	SearchAddress string
	Daycares      []Daycare
}

// buildHTML renders the HTML part.
func buildHTML(daycares []Daycare, searchAddress string) string {
	var sb strings.Builder
	err := htmlTmpl.Execute(&sb, emailData{SearchAddress: searchAddress, Daycares: daycares})
	if err != nil {
		// Template is static and the data carries no funcs, so this is
		// unreachable in practice.
		zap.L().Error("shortlist: render html", zap.Error(err))
		return ""
	}
	return sb.String()
}
