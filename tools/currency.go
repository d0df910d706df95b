package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const currencyLogPrefix = "[currency]"

// Currency converter argument keys.
const (
	FromCurrencyKey = "from_currency"
	ToCurrencyKey   = "to_currency"
	AmountKey       = "amount"
)

// Conversion is the outcome of a currency conversion.
type Conversion struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Result float64 `json:"result"`
	Rate   float64 `json:"rate"`
}

// String renders the conversion as a sentence.
func (c Conversion) String() string {
	return fmt.Sprintf("If amount of %s is converted from %s to %s then the amount is %s and the conversion rate is %s",
		formatDecimal(c.Amount), c.From, c.To, formatDecimal(c.Result), formatDecimal(c.Rate))
}

// Currency converts amounts using live exchange rates.
type Currency struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCurrency creates a currency converter against the exchange-rate API at
// baseURL ("<baseURL>/<FROM>" must answer with a rates mapping).
func NewCurrency(baseURL, apiKey string, timeout time.Duration) *Currency {
	return &Currency{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Currency) Name() Name {
	return CurrencyConverterName
}

func (c *Currency) Description() string {
	return "Convert an amount of money from one currency to another using live exchange rates."
}

func (c *Currency) Parameters() map[string]any {
	return objectSchema(map[string]any{
		FromCurrencyKey: stringProperty("ISO 4217 code of the source currency, e.g. USD"),
		ToCurrencyKey:   stringProperty("ISO 4217 code of the target currency, e.g. EUR"),
		AmountKey:       numberProperty("The amount to convert, greater than zero"),
	}, FromCurrencyKey, ToCurrencyKey, AmountKey)
}

// Render converts and renders the result as a sentence.
func (c *Currency) Render(ctx context.Context, args map[string]any) (string, error) {
	conversion, err := c.Convert(ctx, args)
	if err != nil {
		return "", err
	}
	return conversion.String(), nil
}

// Convert validates args, fetches the rates for the source currency and
// applies the rate of the target currency. Failures wrap ErrInvalidInput or
// ErrTransport.
func (c *Currency) Convert(ctx context.Context, args map[string]any) (Conversion, error) {
	from := strings.ToUpper(stringArg(args, FromCurrencyKey))
	to := strings.ToUpper(stringArg(args, ToCurrencyKey))
	if from == "" || to == "" || !present(args, AmountKey) {
		return Conversion{}, invalidInput(errors.New("Missing required parameters"))
	}
	amount, ok := toFloat(args[AmountKey])
	if !ok {
		return Conversion{}, invalidInput(fmt.Errorf("Invalid amount: %s", describeValue(args[AmountKey])))
	}
	if !(amount > 0) {
		return Conversion{}, invalidInput(errors.New("Amount must be positive"))
	}

	rates, err := c.fetchRates(ctx, from)
	if err != nil {
		return Conversion{}, err
	}

	rate, ok := rates[to]
	if !ok {
		return Conversion{}, invalidInput(fmt.Errorf("Invalid currency code: %s", to))
	}

	log.Printf("%s %s -> %s rate=%v", currencyLogPrefix, from, to, rate)
	return Conversion{
		From:   from,
		To:     to,
		Amount: amount,
		Result: math.Round(amount*rate*100) / 100,
		Rate:   rate,
	}, nil
}

func (c *Currency) fetchRates(ctx context.Context, from string) (map[string]float64, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(from)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError("Failed to fetch exchange rates", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError("Failed to fetch exchange rates", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("Failed to fetch exchange rates", err)
	}
	if rejectedRequest(resp.StatusCode) {
		var apiErr struct {
			ErrorType string `json:"error-type"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.ErrorType != "" {
			return nil, invalidInput(fmt.Errorf("exchange rates for %s: %s", from, apiErr.ErrorType))
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportError("Failed to fetch exchange rates", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, invalidInput(fmt.Errorf("parsing exchange rates: %w", err))
	}
	if payload.Rates == nil {
		return nil, invalidInput(errors.New("no rates in response"))
	}
	return payload.Rates, nil
}
