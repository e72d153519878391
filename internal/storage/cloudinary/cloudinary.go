package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/storage"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/httpclient"
)

// Config holds Cloudinary credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Storage uploads images to Cloudinary over its HTTP upload API. Requests go
// through a circuit breaker so a struggling image host fails fast instead of
// stalling every product write.
type Storage struct {
	client *httpclient.Client
	cfg    Config
	now    func() time.Time
}

// New creates a Cloudinary-backed storage.
func New(cfg Config, log *slog.Logger) *Storage {
	transport := httpclient.NewBreakerTransport("cloudinary", log, nil)
	client := httpclient.New(
		fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cfg.CloudName),
		httpclient.WithTimeout(30*time.Second),
		httpclient.WithTransport(transport),
	)

	return &Storage{client: client, cfg: cfg, now: time.Now}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Storage) Upload(ctx context.Context, filename string, content io.Reader) (*storage.UploadResult, error) {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	params := map[string]string{
		"timestamp": timestamp,
	}
	if s.cfg.Folder != "" {
		params["folder"] = s.cfg.Folder
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if err := writer.WriteField("api_key", s.cfg.APIKey); err != nil {
		return nil, fmt.Errorf("write api key: %w", err)
	}
	if err := writer.WriteField("signature", s.sign(params)); err != nil {
		return nil, fmt.Errorf("write signature: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	status, respBody, err := s.client.Post(ctx, "/image/upload", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}

	var resp uploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode cloudinary response: %w", err)
	}

	if status != http.StatusOK {
		msg := "unknown error"
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return nil, fmt.Errorf("cloudinary upload failed with status %d: %s", status, msg)
	}

	return &storage.UploadResult{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
	}, nil
}

func (s *Storage) Destroy(ctx context.Context, publicID string) error {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := make([]string, 0, len(params)+2)
	for key, value := range params {
		form = append(form, key+"="+value)
	}
	form = append(form, "api_key="+s.cfg.APIKey, "signature="+s.sign(params))

	status, respBody, err := s.client.Post(ctx, "/image/destroy",
		"application/x-www-form-urlencoded", strings.NewReader(strings.Join(form, "&")))
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("cloudinary destroy failed with status %d: %s", status, respBody)
	}

	// Cloudinary reports "not found" as a 200 with result "not found"; both
	// count as destroyed.
	return nil
}

// sign builds the Cloudinary API signature: parameters sorted by key, joined
// as a query string, with the API secret appended, SHA-1 hashed.
func (s *Storage) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + s.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
