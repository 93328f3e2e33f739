package payfast

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	paymentdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "payfast"
}

// Reference reads m_payment_id from the raw ITN body. Nothing else in the
// payload may be trusted before Verify has run.
func (f *Factory) Reference(payload []byte) (string, error) {
	pairs, err := parseBody(payload)
	if err != nil {
		return "", paymentdomain.ErrInvalidPayload
	}
	reference := strings.TrimSpace(pairs.get("m_payment_id"))
	if reference == "" {
		return "", paymentdomain.ErrMissingReference
	}
	return reference, nil
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.Adapter, error) {
	passphrase, ok := cfg.Config["passphrase"].(string)
	if !ok {
		return nil, paymentdomain.ErrInvalidConfig
	}
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}

	return &Adapter{
		orgID:      cfg.OrgID,
		passphrase: passphrase,
	}, nil
}

type Adapter struct {
	orgID      snowflake.ID
	passphrase string
}

// Verify recomputes the ITN parameter signature. PayFast signs the form
// fields in the order they were sent, excluding the signature field itself,
// with the merchant passphrase appended as a final parameter.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	pairs, err := parseBody(payload)
	if err != nil {
		return paymentdomain.ErrInvalidPayload
	}

	provided := strings.TrimSpace(pairs.get("signature"))
	if provided == "" {
		return paymentdomain.ErrInvalidSignature
	}

	expected := signature(pairs, a.passphrase)
	if !hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.Event, error) {
	pairs, err := parseBody(payload)
	if err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	eventID := strings.TrimSpace(pairs.get("pf_payment_id"))
	if eventID == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}
	reference := strings.TrimSpace(pairs.get("m_payment_id"))
	if reference == "" {
		return nil, paymentdomain.ErrMissingReference
	}

	amount := decimal.Zero
	if raw := strings.TrimSpace(pairs.get("amount_gross")); raw != "" {
		amount, err = decimal.NewFromString(raw)
		if err != nil {
			return nil, paymentdomain.ErrInvalidPayload
		}
	}

	statusRaw := strings.TrimSpace(pairs.get("payment_status"))
	status := paymentdomain.TransactionStatusFailed
	if strings.EqualFold(statusRaw, "COMPLETE") {
		status = paymentdomain.TransactionStatusSucceeded
	}

	currency := strings.ToUpper(strings.TrimSpace(pairs.get("currency")))
	if currency == "" {
		currency = "ZAR"
	}

	// The ledger stores payloads as JSON, so the form fields are re-encoded
	// as an object instead of keeping the urlencoded body.
	fields := make(map[string]string, len(pairs))
	for _, item := range pairs {
		fields[item.key] = item.value
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	return &paymentdomain.Event{
		Provider:        "payfast",
		ProviderEventID: eventID,
		Reference:       reference,
		Amount:          amount,
		Currency:        currency,
		StatusRaw:       statusRaw,
		Status:          status,
		PayerEmail:      strings.TrimSpace(pairs.get("email_address")),
		RawPayload:      raw,
	}, nil
}

// signature computes the ITN signature over a parsed body.
func signature(pairs pairList, passphrase string) string {
	var builder strings.Builder
	for _, pair := range pairs {
		if pair.key == "signature" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(pair.key)
		builder.WriteByte('=')
		builder.WriteString(encodeValue(pair.value))
	}
	if passphrase != "" {
		if builder.Len() > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString("passphrase=")
		builder.WriteString(encodeValue(passphrase))
	}
	sum := md5.Sum([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}

type pair struct {
	key   string
	value string
}

type pairList []pair

func (p pairList) get(key string) string {
	for _, item := range p {
		if item.key == key {
			return item.value
		}
	}
	return ""
}

// parseBody decodes a form-encoded body preserving field order. url.Values
// cannot be used here because the signature depends on the order the
// provider sent the fields in.
func parseBody(payload []byte) (pairList, error) {
	body := strings.TrimSpace(string(payload))
	if body == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}

	var pairs pairList
	for _, segment := range strings.Split(body, "&") {
		if segment == "" {
			continue
		}
		keyValue := strings.SplitN(segment, "=", 2)
		key, err := url.QueryUnescape(keyValue[0])
		if err != nil {
			return nil, err
		}
		value := ""
		if len(keyValue) == 2 {
			value, err = url.QueryUnescape(keyValue[1])
			if err != nil {
				return nil, err
			}
		}
		pairs = append(pairs, pair{key: key, value: value})
	}
	if len(pairs) == 0 {
		return nil, paymentdomain.ErrInvalidPayload
	}
	return pairs, nil
}

// encodeValue matches PayFast's parameter encoding: spaces become '+' and
// reserved characters use uppercase percent escapes.
func encodeValue(value string) string {
	encoded := url.QueryEscape(value)
	var builder strings.Builder
	for i := 0; i < len(encoded); i++ {
		ch := encoded[i]
		if ch == '%' && i+2 < len(encoded) {
			builder.WriteByte(ch)
			builder.WriteByte(upperHex(encoded[i+1]))
			builder.WriteByte(upperHex(encoded[i+2]))
			i += 2
			continue
		}
		builder.WriteByte(ch)
	}
	return builder.String()
}

func upperHex(ch byte) byte {
	if ch >= 'a' && ch <= 'f' {
		return ch - 'a' + 'A'
	}
	return ch
}
