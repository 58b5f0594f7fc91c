// Package vuln mengambil daftar versi OS rentan dari feed remote dan
// mencocokkannya dengan identitas OS host.
package vuln

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultURLTemplate endpoint CVRF MSRC; {document_id} diganti saat fetch
	DefaultURLTemplate = "https://api.msrc.microsoft.com/cvrf/v3.0/cvrf/{document_id}"
	DefaultTimeout     = 10 * time.Second

	documentIDPlaceholder = "{document_id}"
	maxFeedBytes          = 64 << 20
)

var (
	ErrStatus = errors.New("unexpected status")
	ErrFormat = errors.New("unexpected data format")
)

// Record satu entri feed: versi OS yang rentan dan patch yang disarankan.
type Record struct {
	OS      string `json:"OS"`
	Version string `json:"Version"`
	Patch   string `json:"Patch"`
}

// Fetcher mengambil feed lewat HTTP.
type Fetcher struct {
	http     *http.Client
	template string
	timeout  time.Duration
	log      *zap.Logger
}

// NewFetcher membuat Fetcher dengan proxy dari environment.
// template kosong = DefaultURLTemplate, timeout <= 0 = DefaultTimeout.
func NewFetcher(template string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if template == "" {
		template = DefaultURLTemplate
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: timeout,
	}
	return &Fetcher{
		http:     &http.Client{Transport: tr, Timeout: timeout},
		template: template,
		timeout:  timeout,
		log:      logger.Named("vuln"),
	}
}

// Close menutup koneksi idle milik client.
func (f *Fetcher) Close() { f.http.CloseIdleConnections() }

// URL mengisi template dengan document ID (di-escape sebagai path segment).
func (f *Fetcher) URL(documentID string) string {
	return strings.ReplaceAll(f.template, documentIDPlaceholder, url.PathEscape(documentID))
}

// Fetch melakukan satu GET ke feed. Kalau gagal (transport, status non-2xx,
// JSON rusak, body bukan object) hasilnya slice kosong (bukan nil) plus error.
func (f *Fetcher) Fetch(ctx context.Context, documentID string) ([]Record, error) {
	u := f.URL(documentID)
	f.log.Debug("Attempting to fetch vulnerability information", zap.String("url", u))

	records, err := f.fetch(ctx, u)
	if err != nil {
		f.log.Error("Error fetching vulnerabilities from the API", zap.String("url", u), zap.Error(err))
		return []Record{}, err
	}
	f.log.Debug("Vulnerabilities data retrieved", zap.Int("records", len(records)))
	return records, nil
}

func (f *Fetcher) fetch(ctx context.Context, u string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// buang sisa body supaya koneksi bisa dipakai ulang
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w %d from %s", ErrStatus, resp.StatusCode, u)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return DecodeFeed(body)
}

// DecodeFeed membaca body feed. Body harus JSON object; array "vulnerabilities"
// yang tidak ada (atau bukan array) berarti daftar kosong. Elemen yang bukan
// object dilewati, field yang bukan string dianggap kosong.
func DecodeFeed(body []byte) ([]Record, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return []Record{}, fmt.Errorf("decode feed: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return []Record{}, fmt.Errorf("%w: expected object, got %s", ErrFormat, jsonKind(doc))
	}

	items, _ := obj["vulnerabilities"].([]any)
	records := make([]Record, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, Record{
			OS:      str(m["OS"]),
			Version: str(m["Version"]),
			Patch:   str(m["Patch"]),
		})
	}
	return records, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// DefaultDocumentID: ID bulanan MSRC ("2006-Jan") untuk bulan berjalan (UTC)
func DefaultDocumentID(now time.Time) string {
	return now.UTC().Format("2006-Jan")
}
