package extraction

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Currency is the only currency receipts are reported in
const Currency = "USD"

// LineItem is a single purchased item
type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Result is the structured record extracted from a receipt
type Result struct {
	Merchant   *string          `json:"merchant"`
	Total      *decimal.Decimal `json:"total"`
	Subtotal   *decimal.Decimal `json:"subtotal"`
	Date       *string          `json:"date"` // YYYY-MM-DD
	Currency   string           `json:"currency"`
	Items      []LineItem       `json:"items"`
	RawText    string           `json:"raw_text"`
	Confidence decimal.Decimal  `json:"confidence"`
}

type lineItemJSON struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

type resultJSON struct {
	Merchant   *string        `json:"merchant"`
	Total      *json.Number   `json:"total"`
	Subtotal   *json.Number   `json:"subtotal"`
	Date       *string        `json:"date"`
	Currency   string         `json:"currency"`
	Items      []lineItemJSON `json:"items"`
	RawText    string         `json:"raw_text"`
	Confidence json.Number    `json:"confidence"`
}

// MarshalJSON encodes amounts and confidence as JSON numbers rather than strings
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Merchant:   r.Merchant,
		Total:      decimalNumber(r.Total),
		Subtotal:   decimalNumber(r.Subtotal),
		Date:       r.Date,
		Currency:   r.Currency,
		Items:      make([]lineItemJSON, 0, len(r.Items)),
		RawText:    r.RawText,
		Confidence: json.Number(r.Confidence.String()),
	}
	for _, item := range r.Items {
		out.Items = append(out.Items, lineItemJSON{
			Name:  item.Name,
			Price: json.Number(item.Price.String()),
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var err error
	*r = Result{
		Merchant: in.Merchant,
		Date:     in.Date,
		Currency: in.Currency,
		Items:    make([]LineItem, 0, len(in.Items)),
		RawText:  in.RawText,
	}
	if r.Total, err = numberDecimal(in.Total); err != nil {
		return err
	}
	if r.Subtotal, err = numberDecimal(in.Subtotal); err != nil {
		return err
	}
	if in.Confidence != "" {
		if r.Confidence, err = decimal.NewFromString(in.Confidence.String()); err != nil {
			return err
		}
	}
	for _, item := range in.Items {
		price, err := decimal.NewFromString(item.Price.String())
		if err != nil {
			return err
		}
		r.Items = append(r.Items, LineItem{Name: item.Name, Price: price})
	}
	return nil
}

func decimalNumber(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := json.Number(d.String())
	return &n
}

func numberDecimal(n *json.Number) (*decimal.Decimal, error) {
	if n == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// assemble composes resolver outputs into the final record
func assemble(doc *Document, merchant *string, total, subtotal *decimal.Decimal, date *string, items []LineItem, confidence decimal.Decimal) *Result {
	if items == nil {
		items = []LineItem{}
	}
	return &Result{
		Merchant:   merchant,
		Total:      total,
		Subtotal:   subtotal,
		Date:       date,
		Currency:   Currency,
		Items:      items,
		RawText:    doc.Raw,
		Confidence: confidence,
	}
}
