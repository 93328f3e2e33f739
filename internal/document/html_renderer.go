package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	quotedomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const quoteHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Quote {{.Number}}</title>
  <style>
    body { margin: 0; padding: 40px; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; color: #1a1f36; background: #f7f9fc; }
    .card { background: #ffffff; max-width: 760px; margin: 0 auto; padding: 60px; border-radius: 4px; box-shadow: 0 2px 5px rgba(0,0,0,0.04); }
    .header { display: flex; justify-content: space-between; margin-bottom: 40px; }
    .header h1 { margin: 0; font-size: 24px; }
    .logo { max-height: 48px; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
    th { font-size: 11px; text-transform: uppercase; color: #8792a2; text-align: left; padding: 8px 0; border-bottom: 1px solid #e3e8ee; }
    td { font-size: 14px; padding: 10px 0; border-bottom: 1px solid #f0f2f5; }
    td.num, th.num { text-align: right; }
    .totals { margin-left: auto; width: 260px; }
    .totals .row { display: flex; justify-content: space-between; font-size: 14px; padding: 4px 0; }
    .totals .grand { font-weight: 700; font-size: 18px; border-top: 1px solid #e3e8ee; padding-top: 8px; }
  </style>
</head>
<body>
  <div class="card">
    <div class="header">
      <h1>Quote {{.Number}}</h1>
      {{if .LogoData}}<img class="logo" src="data:image/png;base64,{{.LogoData}}" alt="logo" />{{end}}
    </div>
    <table>
      <thead>
        <tr>
          <th>Description</th>
          <th class="num">Qty</th>
          <th class="num">Unit Price</th>
          <th class="num">Discount %</th>
          <th class="num">Tax %</th>
          <th class="num">Total</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{.Description}}</td>
          <td class="num">{{.Quantity}}</td>
          <td class="num">{{.UnitPrice}}</td>
          <td class="num">{{.DiscountPct}}</td>
          <td class="num">{{.TaxRatePct}}</td>
          <td class="num">{{.Total}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    <div class="totals">
      <div class="row"><span>Subtotal</span><span>{{.Currency}} {{.Subtotal}}</span></div>
      <div class="row"><span>Discount</span><span>{{.Currency}} {{.Discount}}</span></div>
      <div class="row"><span>Tax</span><span>{{.Currency}} {{.Tax}}</span></div>
      <div class="row grand"><span>Total</span><span>{{.Currency}} {{.Total}}</span></div>
    </div>
  </div>
</body>
</html>`

type htmlItem struct {
	Description string
	Quantity    string
	UnitPrice   string
	DiscountPct string
	TaxRatePct  string
	Total       string
}

type htmlData struct {
	Number   string
	Currency string
	Subtotal string
	Discount string
	Tax      string
	Total    string
	LogoData string
	Items    []htmlItem
}

// HTMLGenerator renders quotes to HTML files under a base directory.
type HTMLGenerator struct {
	log   *zap.Logger
	logos LogoProvider
	dir   string
	tmpl  *template.Template
}

func NewHTMLGenerator(log *zap.Logger, logos LogoProvider, dir string) (*HTMLGenerator, error) {
	tmpl, err := template.New("quote").Parse(quoteHTMLTemplate)
	if err != nil {
		return nil, err
	}
	return &HTMLGenerator{
		log:   log.Named("document.html"),
		logos: logos,
		dir:   dir,
		tmpl:  tmpl,
	}, nil
}

func (g *HTMLGenerator) Generate(ctx context.Context, quote *quotedomain.Quote) ([]byte, string, error) {
	data := htmlData{
		Number:   quote.Number,
		Currency: quote.Currency,
		Subtotal: quote.Subtotal.StringFixed(2),
		Discount: quote.Discount.StringFixed(2),
		Tax:      quote.Tax.StringFixed(2),
		Total:    quote.Total.StringFixed(2),
	}
	for _, item := range quote.Items {
		data.Items = append(data.Items, htmlItem{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			DiscountPct: item.DiscountPct.String(),
			TaxRatePct:  item.TaxRatePct.String(),
			Total:       item.Total.StringFixed(2),
		})
	}

	if g.logos != nil {
		logo, err := g.logos.Logo(ctx, quote.OrgID)
		if err != nil {
			g.log.Warn("logo unavailable, rendering without it",
				zap.String("org_id", quote.OrgID.String()),
				zap.Error(err))
		} else if len(logo) > 0 {
			data.LogoData = base64.StdEncoding.EncodeToString(logo)
		}
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("quote_%s_%s.html",
		strings.ToLower(quote.Number),
		uuid.NewString()[:8])
	path := filepath.Join(g.dir, name)

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), path, nil
}
