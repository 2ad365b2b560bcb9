package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront/internal/config"
)

// ErrVatServiceUnavailable means the VAT service gave no usable answer.
var ErrVatServiceUnavailable = errors.New("vat service unavailable")

type VatChecker interface {
	// CheckVAT reports whether number is registered in countryCode. Any
	// failure to obtain an answer is ErrVatServiceUnavailable.
	CheckVAT(ctx context.Context, countryCode, number string) (bool, error)
}

type viesClient struct {
	url        string
	httpClient *http.Client
}

func NewViesClient(cfg *config.Config) VatChecker {
	return &viesClient{
		url:        cfg.ViesURL,
		httpClient: &http.Client{Timeout: cfg.UpstreamTimeout},
	}
}

const checkVatEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <checkVat xmlns="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
      <countryCode>%s</countryCode>
      <vatNumber>%s</vatNumber>
    </checkVat>
  </soap:Body>
</soap:Envelope>`

type checkVatEnvelopeResponse struct {
	Body struct {
		Response *struct {
			Valid *bool `xml:"valid"`
		} `xml:"checkVatResponse"`
		Fault *struct {
			String string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

func (v *viesClient) CheckVAT(ctx context.Context, countryCode, number string) (bool, error) {
	var body bytes.Buffer
	fmt.Fprintf(&body, checkVatEnvelope, xmlEscape(countryCode), xmlEscape(number))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, &body)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVatServiceUnavailable, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVatServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVatServiceUnavailable, err)
	}

	var env checkVatEnvelopeResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		return false, fmt.Errorf("%w: malformed response (HTTP %d)", ErrVatServiceUnavailable, resp.StatusCode)
	}
	if env.Body.Fault != nil {
		return false, fmt.Errorf("%w: %s", ErrVatServiceUnavailable, strings.TrimSpace(env.Body.Fault.String))
	}
	if env.Body.Response == nil || env.Body.Response.Valid == nil {
		return false, fmt.Errorf("%w: no validity in response", ErrVatServiceUnavailable)
	}
	return *env.Body.Response.Valid, nil
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
